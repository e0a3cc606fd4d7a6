package commercetools

import (
	"context"
	"sort"
)

const channelPageLimit = 100

// ChannelMap maps supply channel ids to their display keys
type ChannelMap map[string]string

type channel struct {
	ID   string            `json:"id"`
	Key  string            `json:"key"`
	Name map[string]string `json:"name"`
}

// displayName prefers the key, then a localized name, then the id
func (ch channel) displayName() string {
	if ch.Key != "" {
		return ch.Key
	}
	locales := make([]string, 0, len(ch.Name))
	for locale := range ch.Name {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if ch.Name[locale] != "" {
			return ch.Name[locale]
		}
	}
	return ch.ID
}

// FetchChannels lists every inventory supply channel
func (c *Client) FetchChannels(ctx context.Context, log *RequestLog) (ChannelMap, error) {
	channels := make(ChannelMap)
	query := map[string]string{"where": `roles contains any ("InventorySupply")`}

	err := paginate(ctx, c, log, ModuleChannels, "/channels", query, channelPageLimit,
		func(results []channel, _, _ int) {
			for _, ch := range results {
				channels[ch.ID] = ch.displayName()
			}
		})
	if err != nil {
		return nil, err
	}
	return channels, nil
}
