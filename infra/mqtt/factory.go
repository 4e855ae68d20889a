package mqtt

import (
	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/publish"
)

func init() {
	_ = publish.Register("mqtt", func(conf map[string]any) (publish.Publisher, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPahoPublisher(c)
	})
}
