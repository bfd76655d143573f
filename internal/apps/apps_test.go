package apps_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsdevtools/client1/internal/apps"
)

func TestRegistryGet(t *testing.T) {
	r := apps.FromMap(map[string]string{
		"client1": "https://client1.example.com",
	})

	app, err := r.Get("client1")
	require.NoError(t, err)
	require.Equal(t, "https://client1.example.com", app.BaseURL)

	_, err = r.Get("client2")
	require.Error(t, err)
}

func TestRegistrySlugsStableOrder(t *testing.T) {
	r := apps.FromMap(map[string]string{
		"b": "https://b.example.com",
		"a": "https://a.example.com",
		"c": "https://c.example.com",
	})

	require.Equal(t, []string{"a", "b", "c"}, r.Slugs())
}
