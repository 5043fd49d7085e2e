package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlans(t *testing.T) {
	all := Plans()
	require.Len(t, all, 3)

	prices := map[string]string{}
	for _, p := range all {
		prices[p.Name] = p.Price()
		assert.NotEmpty(t, p.Benefits, p.Name)
	}
	assert.Equal(t, map[string]string{Basic: "$0", Pro: "$29", Premium: "$99"}, prices)

	all[0].Name = "changed"
	assert.Equal(t, Basic, Plans()[0].Name)
}

func TestLookup(t *testing.T) {
	p, err := Lookup("premium")
	require.NoError(t, err)
	assert.Equal(t, Premium, p.Name)
	assert.Contains(t, p.Benefits, "Emergency priority")

	_, err = Lookup("Gold")
	assert.Error(t, err)
}
