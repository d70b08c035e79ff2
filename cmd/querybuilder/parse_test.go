package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr string
		want condition
	}{
		{"id > 1", condition{"id", ">", int64(1)}},
		{"name LIKE %John%", condition{"name", "LIKE", "%John%"}},
		{"name = John Smith", condition{"name", "=", "John Smith"}},
		{"score >= 2.5", condition{"score", ">=", 2.5}},
		{"active = true", condition{"active", "=", true}},
		{`id = "1"`, condition{"id", "=", "1"}},
		{"name $regex ^J", condition{"name", "$regex", "^J"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseCondition(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseCondition("id >")
	assert.Error(t, err)
}

func TestParseJoin(t *testing.T) {
	j, err := parseJoin("orders users.id = orders.user_id")
	require.NoError(t, err)
	assert.Equal(t, join{"orders", "users.id", "=", "orders.user_id"}, j)

	_, err = parseJoin("orders users.id =")
	assert.Error(t, err)
}
