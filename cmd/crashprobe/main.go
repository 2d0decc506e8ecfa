package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"crashprobe/internal/app"
	"crashprobe/internal/config"
	"crashprobe/internal/crashfile"
	"crashprobe/internal/doctor"
	"crashprobe/internal/eventid"
	"crashprobe/internal/slot"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ex, ok := err.(ExitCoder); ok {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

type svcFactory func() (*app.Service, error)

func newRootCmd() *cobra.Command {
	var configPath string
	var jsonOutput bool

	newSvc := func() (*app.Service, error) {
		return app.New(app.Options{ConfigPath: configPath})
	}

	cmd := &cobra.Command{
		Use:           "crashprobe",
		Short:         "Event identity and log-slot storage for the crash probe",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(newInitCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newIDCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newReserveCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newMkdirCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newCrashfileCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newLogCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newShowCmd(&jsonOutput))
	cmd.AddCommand(newRebootedCmd(newSvc, &jsonOutput))
	cmd.AddCommand(newDoctorCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func newInitCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the output directory and missing rotation counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			created, err := svc.Init()
			if err != nil {
				return err
			}
			msg := "layout ready at " + svc.Outdir
			if len(created) > 0 {
				msg += " (created " + strings.Join(created, ", ") + ")"
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]any{"outdir": svc.Outdir, "created": created}, msg)
		},
	}
}

func newIDCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	var size string
	cmd := &cobra.Command{
		Use:   "id <seed1> [seed2]",
		Short: "Generate an event id",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sz, err := eventid.ParseSize(size)
			if err != nil {
				return err
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			seed2 := ""
			if len(args) == 2 {
				seed2 = args[1]
			}
			id, err := svc.IDs.Generate(args[0], seed2, sz)
			if err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]string{"id": id}, id)
		},
	}
	cmd.Flags().StringVar(&size, "size", "short", "id size: short|long")
	return cmd
}

func newReserveCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "reserve <crash|stats|vmevent>",
		Short: "Reserve the next slot index for a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := slot.ParseCategory(args[0])
			if err != nil {
				return err
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			res, err := svc.Slots.Reserve(cat)
			if err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]any{"root": res.Root, "index": res.Index}, fmt.Sprintf("%s %d", res.Root, res.Index))
		},
	}
}

func newMkdirCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <crash|stats|vmevent> <event-id>",
		Short: "Reserve a slot and create its directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := slot.ParseCategory(args[0])
			if err != nil {
				return err
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			dir, err := svc.Slots.CreateDir(cat, args[1])
			if err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]string{"dir": dir}, dir)
		},
	}
}

type recordFlags struct {
	event string
	id    string
	typ   string
	data  [3]string
}

func (f *recordFlags) bind(fs *pflag.FlagSet, withID bool) {
	fs.StringVar(&f.event, "event", "", "event name (EVENT)")
	fs.StringVar(&f.typ, "type", "", "event subtype (TYPE)")
	if withID {
		fs.StringVar(&f.id, "id", "", "event id (ID)")
	}
	for i := range f.data {
		fs.StringVar(&f.data[i], fmt.Sprintf("data%d", i), "", fmt.Sprintf("optional DATA%d value", i))
	}
}

// present keeps only the data flags given on the command line, so an
// explicit empty value still produces a DATAn line.
func (f *recordFlags) present(fs *pflag.FlagSet) [3]*string {
	var out [3]*string
	for i := range f.data {
		if fs.Changed(fmt.Sprintf("data%d", i)) {
			v := f.data[i]
			out[i] = &v
		}
	}
	return out
}

func newCrashfileCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	var rf recordFlags
	cmd := &cobra.Command{
		Use:   "crashfile <dir>",
		Short: "Write a crashfile record into a slot directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rf.event == "" || rf.id == "" {
				return fmt.Errorf("--event and --id are required")
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			rec := crashfile.Record{Event: rf.event, ID: rf.id, Type: rf.typ, Data: rf.present(cmd.Flags())}
			if err := svc.Writer.Write(args[0], rec); err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, map[string]string{"dir": args[0]}, "wrote crashfile in "+args[0])
		},
	}
	rf.bind(cmd.Flags(), true)
	return cmd
}

func newLogCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	var rf recordFlags
	var seed1, seed2, size string
	cmd := &cobra.Command{
		Use:   "log <crash|stats|vmevent>",
		Short: "Generate an id, create a slot directory and write its crashfile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := slot.ParseCategory(args[0])
			if err != nil {
				return err
			}
			sz, err := eventid.ParseSize(size)
			if err != nil {
				return err
			}
			if rf.event == "" {
				return fmt.Errorf("--event is required")
			}
			if seed1 == "" {
				seed1 = rf.event
			}
			svc, err := newSvc()
			if err != nil {
				return err
			}
			res, err := svc.LogEvent(app.EventRequest{
				Category: cat,
				Size:     sz,
				Seed1:    seed1,
				Seed2:    seed2,
				Event:    rf.event,
				Type:     rf.typ,
				Data:     rf.present(cmd.Flags()),
			})
			if err != nil {
				return err
			}
			return print(cmd.OutOrStdout(), *jsonOutput, res, res.Dir)
		},
	}
	rf.bind(cmd.Flags(), false)
	cmd.Flags().StringVar(&seed1, "seed", "", "id seed (defaults to --event)")
	cmd.Flags().StringVar(&seed2, "seed2", "", "optional second id seed")
	cmd.Flags().StringVar(&size, "size", "short", "id size: short|long")
	return cmd
}

func newShowCmd(jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <dir>",
		Short: "Print the crashfile stored in a slot directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := crashfile.Read(args[0])
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(cmd.OutOrStdout(), true, fields, "")
			}
			_, err = cmd.OutOrStdout().Write(crashfile.Encode(fields))
			return err
		},
	}
}

func newRebootedCmd(newSvc svcFactory, jsonOutput *bool) *cobra.Command {
	var exitCode bool
	cmd := &cobra.Command{
		Use:   "rebooted",
		Short: "Report whether the device rebooted since the last check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSvc()
			if err != nil {
				return err
			}
			rebooted := svc.Reboot.HasRebooted()
			if err := print(cmd.OutOrStdout(), *jsonOutput, map[string]bool{"rebooted": rebooted}, fmt.Sprintf("%t", rebooted)); err != nil {
				return err
			}
			if exitCode && !rebooted {
				return &exitError{code: 3, msg: "no reboot since last check"}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 3 when no reboot happened")
	return cmd
}

// newDoctorCmd reads --config as-is: unlike other commands it must not
// create or repair the config it is inspecting.
func newDoctorCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config and persisted rotation state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := *configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			report := (&doctor.Service{ConfigPath: path}).Run()
			if *jsonOutput {
				if err := print(cmd.OutOrStdout(), true, report, ""); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "healthy: %t\n", report.Healthy)
				for _, c := range report.Counters {
					fmt.Fprintf(out, "  %s = %d\n", c.Name, c.Value)
				}
				for _, f := range report.Findings {
					fmt.Fprintf(out, "- [%s] %s: %s\n", f.Level, f.Code, f.Message)
				}
			}
			if !report.Healthy {
				return &exitError{code: 2, msg: "doctor found errors"}
			}
			return nil
		},
	}
}

func print(w io.Writer, jsonOutput bool, payload any, message string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(blob))
		return err
	}
	if message != "" {
		_, err := fmt.Fprintln(w, message)
		return err
	}
	return nil
}
