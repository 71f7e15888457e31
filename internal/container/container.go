// Package container wires the adapter host services using go.uber.org/dig.
package container

import (
	"go.uber.org/dig"

	"github.com/tasknexus/tasknexus-feishu/internal/bus"
	"github.com/tasknexus/tasknexus-feishu/internal/channel"
	"github.com/tasknexus/tasknexus-feishu/internal/config"
	"github.com/tasknexus/tasknexus-feishu/internal/feishu"
)

// Container holds the resolved service singletons.
// Callers use the typed getter methods; they never need to import dig.
type Container struct {
	cfg      *config.Config
	msgBus   *bus.MessageBus
	feishu   *feishu.Channel
	registry *channel.Registry
}

func (c *Container) Config() *config.Config      { return c.cfg }
func (c *Container) MessageBus() *bus.MessageBus { return c.msgBus }
func (c *Container) Feishu() *feishu.Channel     { return c.feishu }
func (c *Container) Registry() *channel.Registry { return c.registry }

// New builds and wires all services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(newMessageBus); err != nil {
		return nil, err
	}
	if err := d.Provide(newFeishuChannel); err != nil {
		return nil, err
	}
	if err := d.Provide(newRegistry); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		msgBus *bus.MessageBus,
		ch *feishu.Channel,
		registry *channel.Registry,
	) {
		result = &Container{
			cfg:      cfg,
			msgBus:   msgBus,
			feishu:   ch,
			registry: registry,
		}
	})
	return result, err
}

func newMessageBus(cfg *config.Config) *bus.MessageBus {
	return bus.NewMessageBus(cfg.BusBufferSize)
}

func newFeishuChannel(cfg *config.Config) *feishu.Channel {
	return feishu.NewChannel(&cfg.Feishu)
}

// newRegistry registers every known channel plugin; the host discovers
// adapters through it by ID and label.
func newRegistry(ch *feishu.Channel) *channel.Registry {
	registry := channel.NewRegistry()
	registry.Register(ch)
	return registry
}
