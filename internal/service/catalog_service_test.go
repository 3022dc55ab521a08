package service

import (
	"net/url"
	"testing"

	"eshopper/internal/domain"
	"eshopper/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFromQuery_NameContains(t *testing.T) {
	filter := FilterFromQuery(url.Values{"name_contains": {"shirt"}})

	assert.Equal(t, "shirt", filter.NameContains)
	assert.Nil(t, filter.PriceBand)
	assert.Empty(t, filter.Size)
}

func TestFilterFromQuery_FirstPriceBandWins(t *testing.T) {
	// Both bands supplied: the first in band order applies.
	query := url.Values{
		"price_until_three_hundred": {"on"},
		"price_until_hundred":       {"on"},
	}

	filter := FilterFromQuery(query)

	require.NotNil(t, filter.PriceBand)
	assert.Equal(t, repository.PriceBand{Low: 0, High: 100}, *filter.PriceBand)
}

func TestFilterFromQuery_FirstSizeWins(t *testing.T) {
	query := url.Values{
		"size_xl": {"on"},
		"size_s":  {"on"},
	}

	filter := FilterFromQuery(query)

	assert.Equal(t, domain.SizeS, filter.Size)
}

func TestFilterFromQuery_EmptyParamsIgnored(t *testing.T) {
	// Present-but-empty parameters behave as "filter not applied".
	query := url.Values{
		"name_contains":        {""},
		"price_until_hundred":  {""},
		"size_m":               {""},
		"completely_unrelated": {"on"},
	}

	filter := FilterFromQuery(query)

	assert.Empty(t, filter.NameContains)
	assert.Nil(t, filter.PriceBand)
	assert.Empty(t, filter.Size)
}

func TestFilterFromQuery_BandAndSizeCombine(t *testing.T) {
	query := url.Values{
		"price_until_two_hundred": {"on"},
		"size_m":                  {"on"},
		"name_contains":           {"dress"},
	}

	filter := FilterFromQuery(query)

	require.NotNil(t, filter.PriceBand)
	assert.Equal(t, repository.PriceBand{Low: 100, High: 200}, *filter.PriceBand)
	assert.Equal(t, domain.SizeM, filter.Size)
	assert.Equal(t, "dress", filter.NameContains)
}

func TestProperty_AtMostOneBandAndSizeApply(t *testing.T) {
	properties := gopter.NewProperties(nil)

	bandParams := []string{
		"price_until_hundred",
		"price_until_two_hundred",
		"price_until_three_hundred",
		"price_until_four_hundred",
		"price_until_five_hundred",
	}
	sizeParams := []string{"size_xs", "size_s", "size_m", "size_l", "size_xl"}

	properties.Property("any combination of selectors resolves to at most one band and one size", prop.ForAll(
		func(bandMask, sizeMask uint8) bool {
			query := url.Values{}
			for i, param := range bandParams {
				if bandMask&(1<<i) != 0 {
					query.Set(param, "on")
				}
			}
			for i, param := range sizeParams {
				if sizeMask&(1<<i) != 0 {
					query.Set(param, "on")
				}
			}

			filter := FilterFromQuery(query)

			// The winning band is the first selected one in band order.
			firstBand := -1
			for i := range bandParams {
				if bandMask&(1<<i) != 0 {
					firstBand = i
					break
				}
			}
			if firstBand == -1 {
				if filter.PriceBand != nil {
					return false
				}
			} else {
				want := repository.PriceBand{
					Low:  float64(firstBand) * 100,
					High: float64(firstBand+1) * 100,
				}
				if filter.PriceBand == nil || *filter.PriceBand != want {
					return false
				}
			}

			// Same for sizes.
			firstSize := -1
			for i := range sizeParams {
				if sizeMask&(1<<i) != 0 {
					firstSize = i
					break
				}
			}
			if firstSize == -1 {
				return filter.Size == ""
			}
			return filter.Size == domain.ValidSizes[firstSize]
		},
		gen.UInt8Range(0, 31),
		gen.UInt8Range(0, 31),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
