package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/launchdarkly/go-sdk-common/v3/ldlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	unleash "github.com/toggleworks/unleash-client-go"
	"github.com/toggleworks/unleash-client-go/internal/cliconfig"
	"github.com/toggleworks/unleash-client-go/model"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type globalFlags struct {
	envFile     string
	format      string
	timeout     time.Duration
	verbose     bool
	userID      string
	sessionID   string
	remoteAddr  string
	environment string
	properties  map[string]string
}

func newRootCommand(out io.Writer, v *viper.Viper) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "unleash-eval",
		Short: "Inspect and evaluate feature toggles",
		Long: `unleash-eval fetches feature toggle definitions from an Unleash server and evaluates
them locally, exactly as an application using the client library would.

The server is configured with UNLEASH_* environment variables, optionally read from a .env file.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Optional file of UNLEASH_* settings")
	root.PersistentFlags().StringVar(&flags.format, "format", formatText, "Output format (text, json)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "Time to wait for definitions")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "Log client activity to stderr")

	for _, cmd := range []*cobra.Command{
		newFeaturesCommand(out, v, flags),
		newEnabledCommand(out, v, flags),
		newVariantCommand(out, v, flags),
	} {
		root.AddCommand(cmd)
	}
	return root
}

func addContextFlags(cmd *cobra.Command, flags *globalFlags) {
	cmd.Flags().StringVar(&flags.userID, "user-id", "", "Context user id")
	cmd.Flags().StringVar(&flags.sessionID, "session-id", "", "Context session id")
	cmd.Flags().StringVar(&flags.remoteAddr, "remote-address", "", "Context remote address")
	cmd.Flags().StringVar(&flags.environment, "environment", "", "Context environment")
	cmd.Flags().StringToStringVar(&flags.properties, "property", nil, "Custom context property (name=value)")
}

func (f *globalFlags) context() model.Context {
	return model.Context{
		UserID:        f.userID,
		SessionID:     f.sessionID,
		RemoteAddress: f.remoteAddr,
		Environment:   f.environment,
		Properties:    f.properties,
	}
}

func (f *globalFlags) validate() error {
	if f.format != formatText && f.format != formatJSON {
		return fmt.Errorf("unknown output format %q", f.format)
	}
	return nil
}

// withClient builds a client, waits until it has definitions or the timeout expires, and runs action.
func withClient(v *viper.Viper, flags *globalFlags, action func(*unleash.Client) error) error {
	if err := flags.validate(); err != nil {
		return err
	}
	settings, err := cliconfig.Load(v, flags.envFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	loggers := ldlog.NewDefaultLoggers()
	if !flags.verbose {
		loggers.SetMinLevel(ldlog.Error)
	}
	config, err := settings.ClientConfig(loggers)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	client, err := unleash.NewClient(config)
	if err != nil {
		return err
	}
	defer client.Close() //nolint:errcheck

	timer := time.NewTimer(flags.timeout)
	defer timer.Stop()
	select {
	case <-client.Ready():
	case <-timer.C:
		return fmt.Errorf("no toggle definitions after %s", flags.timeout)
	}
	return action(client)
}

func newFeaturesCommand(out io.Writer, v *viper.Viper, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List the defined toggles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(v, flags, func(client *unleash.Client) error {
				var defs []*model.FeatureDefinition
				for _, name := range client.GetFeatureNames() {
					if f, ok := client.GetFeatureDefinition(name); ok {
						defs = append(defs, f)
					}
				}
				if flags.format == formatJSON {
					return writeJSON(out, func(w *jwriter.Writer) { writeFeatures(w, defs) })
				}
				for _, f := range defs {
					names := make([]string, 0, len(f.Strategies))
					for _, s := range f.Strategies {
						names = append(names, s.Name)
					}
					fmt.Fprintf(out, "%s\t%t\t%s\n", f.Name, f.Enabled, strings.Join(names, ","))
				}
				return nil
			})
		},
	}
}

func newEnabledCommand(out io.Writer, v *viper.Viper, flags *globalFlags) *cobra.Command {
	var defaultValue bool
	cmd := &cobra.Command{
		Use:   "enabled <toggle>",
		Short: "Evaluate a toggle for a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(v, flags, func(client *unleash.Client) error {
				enabled := client.IsEnabled(args[0], unleash.WithContext(flags.context()), unleash.WithDefault(defaultValue))
				if flags.format == formatJSON {
					return writeJSON(out, func(w *jwriter.Writer) {
						obj := w.Object()
						obj.Name("name").String(args[0])
						obj.Name("enabled").Bool(enabled)
						obj.End()
					})
				}
				fmt.Fprintln(out, enabled)
				return nil
			})
		},
	}
	addContextFlags(cmd, flags)
	cmd.Flags().BoolVar(&defaultValue, "default", false, "Result for an undefined toggle")
	return cmd
}

func newVariantCommand(out io.Writer, v *viper.Viper, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variant <toggle>",
		Short: "Select the variant of a toggle for a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(v, flags, func(client *unleash.Client) error {
				variant := client.GetVariant(args[0], unleash.WithContext(flags.context()))
				if flags.format == formatJSON {
					return writeJSON(out, func(w *jwriter.Writer) { writeVariant(w, variant) })
				}
				fmt.Fprintf(out, "%s\t%t", variant.Name, variant.Enabled)
				if variant.Payload != nil {
					fmt.Fprintf(out, "\t%s\t%s", variant.Payload.Type, variant.Payload.Value)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}
	addContextFlags(cmd, flags)
	return cmd
}

func writeJSON(out io.Writer, fn func(*jwriter.Writer)) error {
	w := jwriter.NewWriter()
	fn(&w)
	if err := w.Error(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, string(w.Bytes()))
	return err
}

func writeFeatures(w *jwriter.Writer, defs []*model.FeatureDefinition) {
	arr := w.Array()
	for _, f := range defs {
		obj := w.Object()
		obj.Name("name").String(f.Name)
		obj.Name("enabled").Bool(f.Enabled)
		obj.Maybe("description", f.Description != "").String(f.Description)
		strategies := obj.Name("strategies").Array()
		for _, s := range f.Strategies {
			w.String(s.Name)
		}
		strategies.End()
		variants := obj.Name("variants").Array()
		for _, vd := range f.Variants {
			w.String(vd.Name)
		}
		variants.End()
		obj.End()
	}
	arr.End()
}

func writeVariant(w *jwriter.Writer, variant model.Variant) {
	obj := w.Object()
	obj.Name("name").String(variant.Name)
	obj.Name("enabled").Bool(variant.Enabled)
	if variant.Payload != nil {
		payload := obj.Name("payload").Object()
		payload.Name("type").String(variant.Payload.Type)
		payload.Name("value").String(variant.Payload.Value)
		payload.End()
	}
	obj.End()
}
