// Command tutorctl is the operator tool for payments whose follow-up updates
// did not complete.
package main

import (
	"fmt"
	"os"

	config "github.com/anjiri1684/tutor_bazar/configs"
	"github.com/anjiri1684/tutor_bazar/database"
	"github.com/anjiri1684/tutor_bazar/payments"
	"github.com/anjiri1684/tutor_bazar/queries"
	"github.com/anjiri1684/tutor_bazar/services"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tutorctl",
		Short:         "Operator commands for the tutor marketplace backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(paymentsCmd(connect))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// connect wires the same stores and engine the API server uses. No result
// cache is attached so every reconcile reads fresh state.
func connect() (*backend, error) {
	settings := config.Load()
	config.InitLogger(settings)

	database.ConnectDB(settings.DatabaseURL)
	return &backend{
		payments:      &queries.PaymentQueries{DB: database.DB},
		confirmations: services.NewConfirmationService(payments.NewStripeService(settings.StripeSecret, settings.ProviderTimeout, nil), services.NewStores(database.DB), nil),
	}, nil
}
