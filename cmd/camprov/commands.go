package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/muurk/camprov/internal/camera"
	"github.com/muurk/camprov/internal/codec"
	"github.com/muurk/camprov/internal/config"
	"github.com/muurk/camprov/internal/discovery"
	"github.com/muurk/camprov/internal/logging"
	"github.com/muurk/camprov/internal/provision"
	"github.com/muurk/camprov/internal/templates"
	"github.com/muurk/camprov/internal/ui"
)

// Flag names shared by the root and provision commands
const (
	flagIP        = "ip"
	flagID        = "id"
	flagEnvFile   = "env-file"
	flagTemplates = "templates"
	flagRetries   = "retries"
	flagTimeout   = "timeout"
	flagSettle    = "settle"
	flagLogLevel  = "log-level"
	flagNoHistory = "no-history"
)

// Scan and templates command flags
var (
	scanTimeout   int
	scanService   string
	scanMatch     string
	decodePayload bool
)

func init() {
	addProvisionFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(templatesCmd)
}

// addProvisionFlags registers the run flags on fs
func addProvisionFlags(fs *pflag.FlagSet) {
	fs.String(flagIP, "", "Camera IP address or host[:port]")
	fs.String(flagID, provision.DefaultDeviceID, "Device id label written to the camera")
	fs.String(flagEnvFile, config.DefaultEnvFile, "File with LGN, PSWD and NTP variables")
	fs.String(flagTemplates, "", "Request template file (default: embedded set)")
	fs.Int(flagRetries, provision.DefaultMaxAttempts, "Login retries after the first attempt")
	fs.Duration(flagTimeout, camera.DefaultRequestTimeout, "Per-request timeout")
	fs.Duration(flagSettle, camera.DefaultSettleDelay, "Pause after every request")
	fs.String(flagLogLevel, "", "Log level (debug, info, warn, error); overrides CAMPROV_LOG_LEVEL")
	fs.Bool(flagNoHistory, false, "Do not record the run in the config file")
}

// initLogging sets up the global logger from --log-level. An unknown level
// is an input error. A logger that cannot be built is reported and the run
// continues silent.
func initLogging(fs *pflag.FlagSet) error {
	level, _ := fs.GetString(flagLogLevel)
	if err := logging.CheckLevel(level); err != nil {
		return &inputError{msg: fmt.Sprintf("Invalid --%s: %v", flagLogLevel, err)}
	}
	if err := logging.Initialize(level); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	return nil
}

// provisionCmd is the explicit form of the root command
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision a camera (default command)",
	Long: `Log into the camera at --ip and apply, in order:

  1. device id label (--id)
  2. NTP server (NTP)
  3. admin user
  4. delete RTSP user
  5. add RTSP user
  6. log out

The camera restarts its management service after steps 2-4, so camprov logs
back in before continuing, retrying up to --retries times. A failed step is
reported and the run continues. Only failing to log back in stops the run,
with exit status 1.`,
	Example: `  # Credentials from the environment
  LGN=admin PSWD=secret NTP=10.0.0.1 camprov provision --ip 172.31.0.241 --id 31321312

  # Credentials from a .env file, custom templates
  camprov --ip 172.31.0.241 --env-file site.env --templates site-templates.json`,
	RunE: runProvision,
}

// runSettings is the resolved configuration of one provisioning run
type runSettings struct {
	Address       string
	DeviceID      string
	TimeServer    string
	Username      string
	Password      string
	TemplatesPath string
	MaxAttempts   int
	Timeout       time.Duration
	SettleDelay   time.Duration
	NoHistory     bool
}

func runProvision(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	if err := initLogging(flags); err != nil {
		return err
	}

	registry, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Ignoring unreadable config file", zap.Error(err))
		registry = config.NewRegistry()
	}

	envFile, _ := flags.GetString(flagEnvFile)
	creds, err := config.LoadEnv(envFile, flags.Changed(flagEnvFile))
	if err != nil {
		return &inputError{msg: err.Error()}
	}

	settings := resolveSettings(flags, creds, registry.Preferences)
	if err := settings.validate(); err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	report, runErr := provisionCamera(cmd.Context(), settings, printer)
	if report == nil {
		return runErr
	}

	if !settings.NoHistory {
		recordRun(registry, report, runErr)
		if err := registry.Save(); err != nil {
			logging.Warn("Failed to save provisioning history", zap.Error(err))
		}
	}
	return runErr
}

// resolveSettings applies flag > environment > profile > built-in precedence
func resolveSettings(flags *pflag.FlagSet, creds config.Credentials, prefs *config.Preferences) runSettings {
	if prefs == nil {
		prefs = &config.Preferences{}
	}

	s := runSettings{
		Username:   creds.Username,
		Password:   creds.Password,
		TimeServer: creds.TimeServer,
	}

	address, _ := flags.GetString(flagIP)
	s.Address = strings.TrimSpace(address)

	s.DeviceID, _ = flags.GetString(flagID)
	if !flags.Changed(flagID) && prefs.DefaultDeviceID != "" {
		s.DeviceID = prefs.DefaultDeviceID
	}
	s.DeviceID = strings.TrimSpace(s.DeviceID)

	if s.Username == "" {
		s.Username = prefs.Username
	}
	if s.TimeServer == "" {
		s.TimeServer = prefs.TimeServer
	}

	s.TemplatesPath, _ = flags.GetString(flagTemplates)
	if !flags.Changed(flagTemplates) && prefs.TemplatesPath != "" {
		s.TemplatesPath = prefs.TemplatesPath
	}

	s.MaxAttempts, _ = flags.GetInt(flagRetries)
	if !flags.Changed(flagRetries) && prefs.MaxReconnectAttempts > 0 {
		s.MaxAttempts = prefs.MaxReconnectAttempts
	}

	s.Timeout, _ = flags.GetDuration(flagTimeout)
	if !flags.Changed(flagTimeout) && prefs.RequestTimeout > 0 {
		s.Timeout = prefs.RequestTimeout
	}

	s.SettleDelay, _ = flags.GetDuration(flagSettle)
	if !flags.Changed(flagSettle) && prefs.SettleDelay > 0 {
		s.SettleDelay = prefs.SettleDelay
	}

	s.NoHistory, _ = flags.GetBool(flagNoHistory)
	return s
}

// validate reports missing inputs before any device interaction
func (s runSettings) validate() error {
	if s.Address == "" {
		return &inputError{msg: "An IP address is required: use --ip"}
	}
	if s.Username == "" || s.Password == "" {
		return &inputError{msg: fmt.Sprintf("Login and password are required: set %s and %s", config.EnvUsername, config.EnvPassword)}
	}
	return nil
}

// provisionCamera runs the provisioning sequence against one camera. The
// report is nil only when the run could not start.
func provisionCamera(ctx context.Context, s runSettings, printer *ui.Printer) (*provision.Report, error) {
	store, err := templates.Load(s.TemplatesPath)
	if err != nil {
		return nil, err
	}
	if err := store.Require(provision.RequiredTemplates(provision.DefaultPolicy())...); err != nil {
		return nil, err
	}

	transport := camera.NewTransport(s.Address)
	transport.SetTimeout(s.Timeout)
	transport.SettleDelay = s.SettleDelay

	session := camera.NewSession(transport, store, s.Username, s.Password)
	rc := provision.NewRunContext(provision.Target{
		Address:    s.Address,
		DeviceID:   s.DeviceID,
		TimeServer: s.TimeServer,
	}, session)

	runner := provision.NewRunner(rc, store, printer)
	runner.Reconnector.MaxAttempts = s.MaxAttempts

	printer.PrintHeader("Camera provisioning", "camprov --ip "+s.Address,
		ui.Param{Key: "Address", Value: s.Address},
		ui.Param{Key: "Device ID", Value: rc.Target.DeviceID},
		ui.Param{Key: "NTP server", Value: s.TimeServer},
		ui.Param{Key: "Login", Value: s.Username},
	)
	if s.TimeServer == "" {
		printer.Warning("%s is not set; the NTP server will be sent empty", config.EnvTimeServer)
	}

	report, err := runner.Run(ctx)
	printer.PrintSummary(report, err)
	return report, err
}

// outcomeFor classifies a finished run for the history
func outcomeFor(report *provision.Report, err error) config.Outcome {
	switch {
	case errors.Is(err, provision.ErrSessionLost):
		return config.OutcomeSessionLost
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return config.OutcomeCancelled
	case report.Clean():
		return config.OutcomeProvisioned
	default:
		return config.OutcomePartial
	}
}

func recordRun(registry *config.Registry, report *provision.Report, err error) {
	registry.RecordRun(report.Address, report.DeviceID, outcomeFor(report, err), report.FailedNames(), report.FinishedAt)
}

// scanCmd discovers cameras on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for cameras on the local network",
	Long: `Scan for cameras using mDNS/DNS-SD discovery.

Most cameras advertise their RTSP stream as a "_rtsp._tcp" service. The
addresses found can be passed to --ip.`,
	Example: `  # Scan for 5 seconds (default)
  camprov scan

  # Only list cameras whose name starts with IPC
  camprov scan --match '(?i)^ipc'

  # Browse a different service type
  camprov scan --service _http._tcp --scan-timeout 10`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 0, "Scan timeout in seconds (default from config, 5)")
	scanCmd.Flags().StringVar(&scanService, "service", discovery.DefaultServiceType, "mDNS service type to browse")
	scanCmd.Flags().StringVar(&scanMatch, "match", "", "Regular expression the instance or hostname must match")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := initLogging(cmd.Flags()); err != nil {
		return err
	}

	scanner := discovery.NewScanner()
	scanner.Service = scanService
	if scanMatch != "" {
		re, err := regexp.Compile(scanMatch)
		if err != nil {
			return &inputError{msg: fmt.Sprintf("Invalid --match expression: %v", err)}
		}
		scanner.Match = re
	}

	timeout := scanTimeout
	if timeout <= 0 {
		if registry, err := config.LoadRegistry(); err == nil && registry.Preferences.DiscoverTimeout > 0 {
			timeout = registry.Preferences.DiscoverTimeout
		} else {
			timeout = int(discovery.DefaultScanTimeout / time.Second)
		}
	}
	scanner.Timeout = time.Duration(timeout) * time.Second

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning for %s services (timeout: %ds)...\n\n", scanner.Service, timeout)

	cameras, err := scanner.Scan(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printCameras(out, cameras)
	return nil
}

func printCameras(out io.Writer, cameras []*discovery.Camera) {
	if len(cameras) == 0 {
		fmt.Fprintln(out, "No cameras found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Ensure the camera is powered on and on this network segment")
		fmt.Fprintln(out, "  - Some cameras only advertise _http._tcp; try --service")
		fmt.Fprintln(out, "  - Try increasing --scan-timeout for slower networks")
		return
	}

	fmt.Fprintf(out, "Found %d camera(s):\n\n", len(cameras))
	for i, c := range cameras {
		fmt.Fprintf(out, "%d. %s\n", i+1, c.Instance)
		fmt.Fprintf(out, "   Address: %s\n", c.Address())
		fmt.Fprintf(out, "   Host:    %s (port %d)\n", c.Hostname, c.Port)
		if len(c.Metadata) > 0 {
			fmt.Fprintf(out, "   Metadata: %v\n", c.Metadata)
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintln(out, "Use 'camprov --ip <address>' to provision a camera")
}

// templatesCmd lists the request templates in use
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Show the request templates",
	Long: `Print the request templates a run would use, with passwords masked.

Templates come from --templates, the templates_path preference, or the
embedded default set.`,
	Example: `  # Show the embedded templates with decoded settings payloads
  camprov templates --decode`,
	RunE: runTemplates,
}

func init() {
	templatesCmd.Flags().BoolVar(&decodePayload, "decode", false, "Also print decoded base64 settings payloads")
}

func runTemplates(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString(flagTemplates)
	if !cmd.Flags().Changed(flagTemplates) {
		if registry, err := config.LoadRegistry(); err == nil && registry.Preferences.TemplatesPath != "" {
			path = registry.Preferences.TemplatesPath
		}
	}

	store, err := templates.Load(path)
	if err != nil {
		return err
	}

	if err := printTemplates(cmd.OutOrStdout(), store, decodePayload); err != nil {
		return err
	}

	required := provision.RequiredTemplates(provision.DefaultPolicy())
	if err := store.Require(required...); err != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", ui.FailureMarker, err)
	}
	return nil
}

func printTemplates(out io.Writer, store *templates.Store, decode bool) error {
	for _, name := range store.Names() {
		tmpl, err := store.Get(name)
		if err != nil {
			return err
		}
		tmpl = tmpl.Redacted()

		fmt.Fprintf(out, "%s (%s)\n", name, tmpl.ContentType)
		fmt.Fprintf(out, "%s", pretty.Pretty(tmpl.Body))

		if payload := tmpl.DataField("payload"); decode && payload.Exists() {
			decoded, err := codec.Decode(payload.String())
			if err != nil {
				fmt.Fprintf(out, "payload: %s %v\n", ui.FailureMarker, err)
			} else {
				fmt.Fprintf(out, "payload:\n%s", pretty.Pretty([]byte(decoded)))
			}
		}
		fmt.Fprintln(out)
	}
	return nil
}
