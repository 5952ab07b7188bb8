package main

// @title           Sponsorship Billing API
// @version         1.0
// @description     Donor sponsorships and one-time donations billed through Stripe, with webhook reconciliation.
// @termsOfService  http://example.com/terms/

// @contact.name   API Support
// @contact.url    http://www.example.com/support
// @contact.email  support@example.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8888
// @BasePath  /

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/internal/app"
)

func main() {
	os.Exit(run())
}

// run drives the fx lifecycle and returns the process exit code.
func run() int {
	fallback := zap.NewExample().Sugar()
	a := fx.New(app.Module)

	startCtx, cancelStart := context.WithTimeout(context.Background(), app.DefaultStartTimeout)
	defer cancelStart()
	if err := a.Start(startCtx); err != nil {
		fallback.Errorw("sponsorship api failed to start", "error", err)
		return 1
	}

	sig := <-a.Wait()
	fallback.Infow("sponsorship api shutting down", "signal", sig.Signal)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
	defer cancelStop()
	if err := a.Stop(stopCtx); err != nil {
		fallback.Errorw("sponsorship api failed to stop cleanly", "error", err)
		return 1
	}
	return sig.ExitCode
}
