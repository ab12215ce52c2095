package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeSchedule(t *testing.T) {
	f := FeeSchedule{
		Default:  300,
		ByType:   map[string]float64{"Student": 100, "Professional": 200},
		Currency: "USD",
	}

	assert.Equal(t, 100.0, f.Fee("student"))
	assert.Equal(t, 200.0, f.Fee("Professional"))
	assert.Equal(t, 300.0, f.Fee(NonMember))
	assert.Equal(t, 300.0, f.Fee(""))
}

func TestStaticDirectory(t *testing.T) {
	past := time.Now().Add(-time.Hour)

	d := StaticDirectory{
		"M-1": {ID: "M-1", Name: "Ada", Type: "Student"},
		"M-2": {ID: "M-2", Name: "Bob", Type: "Professional", ValidUntil: &past},
	}

	m, err := d.Lookup(context.Background(), " M-1 ")
	require.NoError(t, err)
	assert.Equal(t, "Student", m.Type)
	assert.False(t, m.Expired(time.Now()))

	m, err = d.Lookup(context.Background(), "M-2")
	require.NoError(t, err)
	assert.True(t, m.Expired(time.Now()))

	_, err = d.Lookup(context.Background(), "M-3")
	assert.ErrorIs(t, err, ErrNotFound)
}
