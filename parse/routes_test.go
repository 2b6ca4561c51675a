package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoutes(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		routes  map[string]string
	}{
		{
			"minimal",
			`
route_id,route_short_name
r1,T1
r2,T2`,
			map[string]string{"r1": "T1", "r2": "T2"},
		},

		{
			"extra_columns",
			`
route_id,agency_id,route_short_name,route_long_name,route_type
r1,a,T1,Harbour Line,0
r2,a,,Airport Line,0`,
			map[string]string{"r1": "T1"},
		},

		{
			"mixed_case_header",
			`
Route_ID,ROUTE_SHORT_NAME
r1,T1`,
			map[string]string{"r1": "T1"},
		},

		{
			"missing_short_name_column",
			`
route_id,route_long_name
r1,Harbour Line`,
			map[string]string{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			routes, err := ParseRoutes(bytes.NewBufferString(tc.content))
			require.NoError(t, err)
			assert.Equal(t, tc.routes, routes)
		})
	}
}
