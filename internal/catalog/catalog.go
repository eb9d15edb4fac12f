package catalog

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/pkg/constants"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when an edit names a channel id that is not in the
// catalog.
var ErrNotFound = errors.New("channel not found")

// Catalog is an ordered channel list. Every edit returns a new Catalog and
// leaves the receiver untouched.
type Catalog struct {
	channels []config.Channel
	ids      *IDGenerator
}

// New wraps channels in a Catalog. A nil generator selects random identifiers.
func New(channels []config.Channel, ids *IDGenerator) Catalog {
	if ids == nil {
		ids = NewIDGenerator()
	}
	return Catalog{channels: copyChannels(channels), ids: ids}
}

// Channels returns a copy of the channel list in order.
func (c Catalog) Channels() []config.Channel {
	return copyChannels(c.channels)
}

// Len is the number of channels.
func (c Catalog) Len() int {
	return len(c.channels)
}

// Get returns the channel with the given id.
func (c Catalog) Get(id string) (config.Channel, bool) {
	if i := c.index(id); i >= 0 {
		return c.channels[i], true
	}
	return config.Channel{}, false
}

// Add appends a new channel called name with the template calibration.
func (c Catalog) Add(name string) (Catalog, config.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return c, config.Channel{}, fmt.Errorf("channel name cannot be empty")
	}
	ch := Template(c.ids.NewID(name), name)
	out := c.with(append(copyChannels(c.channels), ch))
	return out, ch, nil
}

// Update applies fn to a copy of the channel with the given id. The id itself
// cannot be changed.
func (c Catalog) Update(id string, fn func(*config.Channel)) (Catalog, error) {
	i := c.index(id)
	if i < 0 {
		return c, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	channels := copyChannels(c.channels)
	fn(&channels[i])
	channels[i].ID = id
	return c.with(channels), nil
}

// SetEnabled switches a channel on or off.
func (c Catalog) SetEnabled(id string, enabled bool) (Catalog, error) {
	return c.Update(id, func(ch *config.Channel) {
		ch.SetEnabled(enabled)
	})
}

// Remove drops the channel with the given id.
func (c Catalog) Remove(id string) (Catalog, error) {
	i := c.index(id)
	if i < 0 {
		return c, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	channels := make([]config.Channel, 0, len(c.channels)-1)
	channels = append(channels, c.channels[:i]...)
	channels = append(channels, c.channels[i+1:]...)
	return c.with(copyChannels(channels)), nil
}

func (c Catalog) with(channels []config.Channel) Catalog {
	return Catalog{channels: channels, ids: c.ids}
}

func (c Catalog) index(id string) int {
	for i, ch := range c.channels {
		if ch.ID == id {
			return i
		}
	}
	return -1
}

func copyChannels(channels []config.Channel) []config.Channel {
	out := make([]config.Channel, len(channels))
	for i, ch := range channels {
		out[i] = ch
		if ch.Enabled != nil {
			enabled := *ch.Enabled
			out[i].Enabled = &enabled
		}
		if ch.MaxSpend != nil {
			out[i].MaxSpend = config.SpendLimit(*ch.MaxSpend)
		}
	}
	return out
}

// StarterPlan returns a complete plan over the default catalog.
func StarterPlan() *config.Configuration {
	conf := &config.Configuration{
		TotalBudget:       DefaultTotalBudget,
		Step:              constants.DefaultStep,
		Currency:          constants.DefaultCurrencySymbol,
		Objective:         config.ObjectiveAuto,
		ContentLiftPer10k: DefaultContentLiftPer10k,
		ContentChannel:    constants.DefaultContentChannel,
		Channels:          Defaults(),
		Logging:           config.LoggingConfig{Level: "info", Format: "console"},
		Output:            config.OutputConfig{Format: constants.OutputFormatPretty},
	}
	conf.Normalize()
	return conf
}

// WritePlan writes conf as YAML that LoadConfiguration can read back.
func WritePlan(w io.Writer, conf *config.Configuration) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(conf); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return encoder.Close()
}
