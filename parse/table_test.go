package parse

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tableRow struct {
	A string `csv:"a"`
	B string `csv:"b"`
}

func TestReadTable(t *testing.T) {
	for _, tc := range []struct {
		name    string
		content string
		ok      bool
		rows    []*tableRow
	}{
		{
			"plain",
			"a,b\n1,2\n3,4",
			true,
			[]*tableRow{{"1", "2"}, {"3", "4"}},
		},
		{
			"bom",
			"\xef\xbb\xbfa,b\n1,2",
			true,
			[]*tableRow{{"1", "2"}},
		},
		{
			"crlf",
			"a,b\r\n1,2\r\n3,4\r\n",
			true,
			[]*tableRow{{"1", "2"}, {"3", "4"}},
		},
		{
			"cr",
			"a,b\r1,2\r3,4",
			true,
			[]*tableRow{{"1", "2"}, {"3", "4"}},
		},
		{
			"upper_case_header",
			"A, B\n1,2",
			true,
			[]*tableRow{{"1", "2"}},
		},
		{
			"quoted_comma",
			"a,b\n\"x,y\",2",
			true,
			[]*tableRow{{"x,y", "2"}},
		},
		{
			"mid_field_quote",
			"a,b\nx\"y,z\",2",
			true,
			[]*tableRow{{"xy,z", "2"}},
		},
		{
			"unterminated_quote",
			"a,b\nPl\"a,ce",
			true,
			[]*tableRow{{"Pla,ce", ""}},
		},
		{
			"doubled_quote",
			"a,b\n\"say \"\"hi\"\"\",2",
			true,
			[]*tableRow{{"say \"hi\"", "2"}},
		},
		{
			"blank_lines",
			"a,b\n\n1,2\n\n3,4\n",
			true,
			[]*tableRow{{"1", "2"}, {"3", "4"}},
		},
		{
			"short_row",
			"a,b\n1",
			true,
			[]*tableRow{{"1", ""}},
		},
		{
			"header_only",
			"a,b",
			true,
			[]*tableRow{},
		},
		{
			"missing_required",
			"a,c\n1,2",
			false,
			[]*tableRow{},
		},
		{
			"empty",
			"",
			false,
			[]*tableRow{},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rows := []*tableRow{}
			ok, err := readTable(bytes.NewBufferString(tc.content), &rows, "a", "b")
			require.NoError(t, err)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.rows, rows)
		})
	}
}
