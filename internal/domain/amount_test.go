package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/dom/gemrealm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(domain.NewAmount(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, `"1000000"`, string(data))

	huge, err := domain.ParseAmount("123456789012345678901234567890")
	require.NoError(t, err)
	data, err = json.Marshal(huge)
	require.NoError(t, err)
	assert.Equal(t, `"123456789012345678901234567890"`, string(data))

	var back domain.Amount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, huge.Equal(back))

	assert.Error(t, json.Unmarshal([]byte(`1000`), &back))
	assert.Error(t, json.Unmarshal([]byte(`"1e6"`), &back))
}

func TestAmount_Add(t *testing.T) {
	a := domain.NewAmount(1_000_000)
	b := a.Add(domain.ReferralBonusGems)

	assert.Equal(t, "1000000", a.String(), "Add must not modify the receiver")
	assert.Equal(t, "1000100", b.String())

	maxInt64, err := domain.ParseAmount("9223372036854775807")
	require.NoError(t, err)
	assert.Equal(t, "9223372036854775907", maxInt64.Add(100).String())
}

func TestAmount_ParseRejectsNegative(t *testing.T) {
	_, err := domain.ParseAmount("-1")
	assert.Error(t, err)
	_, err = domain.ParseAmount("abc")
	assert.Error(t, err)
}

func TestAmount_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{name: "string", src: "1000100", want: "1000100"},
		{name: "bytes", src: []byte("42"), want: "42"},
		{name: "int64", src: int64(7), want: "7"},
		{name: "nil", src: nil, want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a domain.Amount
			require.NoError(t, a.Scan(tt.src))
			assert.Equal(t, tt.want, a.String())
		})
	}

	var a domain.Amount
	assert.Error(t, a.Scan(3.14))
}

func TestAmount_Value(t *testing.T) {
	v, err := domain.NewAmount(1000).Value()
	require.NoError(t, err)
	assert.Equal(t, "1000", v)
}
