package cli

import (
	"context"
	"testing"

	"github.com/miportal/portal/internal/config"
	"github.com/miportal/portal/internal/models"
	"github.com/miportal/portal/internal/views"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredAppOptions(t *testing.T) {
	cfg = config.DefaultConfig()
	t.Cleanup(func() { cfg = nil })

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	tests := []struct {
		name     string
		user     *models.User
		expected string
	}{
		{name: "username", user: &models.User{Username: "ana", Email: "ana@example.com"}, expected: "ana"},
		{name: "email only", user: &models.User{Email: "ana@example.com"}, expected: "ana@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := registeredAppOptions(cmd, tt.user)

			assert.Equal(t, views.RegisteredNotice, opts.Notice)
			assert.Equal(t, tt.expected, opts.Username)
			assert.Equal(t, cmd.Context(), opts.Context)
			require.NotNil(t, opts.LastWarning)
			assert.Empty(t, opts.LastWarning())
		})
	}
}

func TestRegisterOpenFlag(t *testing.T) {
	flag := registerCmd.Flags().Lookup("open")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}
