package commands

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapboard/internal/config"
	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// newClient builds a table store client from the loaded configuration.
func newClient(cmd *cobra.Command, cfg *config.Config) *datastore.Client {
	return datastore.NewClient(datastore.ClientConfig{
		BaseURL:    cfg.Datastore.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Datastore.Timeout},
		Logger:     LoggerFrom(cmd.Context()),
	})
}
