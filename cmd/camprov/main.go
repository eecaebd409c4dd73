// Camprov provisions network cameras over their HTTP control endpoint.
//
// A run logs into one camera and applies a fixed sequence of changes: device
// id label, NTP server, admin user and RTSP user. The camera drops the
// session after several of these changes, and camprov logs back in before
// continuing.
//
// Usage:
//
//	LGN=admin PSWD=secret NTP=pool.ntp.org camprov --ip 172.31.0.241 --id 31321312
//
// Credentials and the NTP server are read from the environment or a .env
// file. See 'camprov --help' for available commands.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/camprov/internal/logging"
	"github.com/muurk/camprov/internal/provision"
	"github.com/muurk/camprov/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	var inputErr *inputError
	switch {
	case err == nil:
	case errors.As(err, &inputErr):
		fmt.Fprintln(rootCmd.OutOrStdout(), inputErr.Error())
	case errors.Is(err, provision.ErrSessionLost):
		// already reported by the run output
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps a command error to the process exit status. Input errors
// are reported and exit 0, session loss exits 1, an interrupt exits 130.
func exitCode(err error) int {
	var inputErr *inputError
	switch {
	case err == nil, errors.As(err, &inputErr):
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}

// inputError is an invalid invocation detected before contacting a camera
type inputError struct {
	msg string
}

func (e *inputError) Error() string {
	return e.msg
}

var rootCmd = &cobra.Command{
	Use:   "camprov",
	Short: "Network camera provisioning utility",
	Long: `Provision a network camera over its HTTP control endpoint.

Sets the device id label, NTP server, admin user and RTSP user in one run,
logging back in whenever the camera drops the session.

If no command is specified, provisioning runs against --ip.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runProvision,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "camprov %s\n", version.Full())
	},
}
