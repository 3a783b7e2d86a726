package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/OCAP2/armory/internal/campaign"
	"github.com/OCAP2/armory/internal/config"
	"github.com/OCAP2/armory/internal/dispatcher"
	"github.com/OCAP2/armory/internal/logging"
	"github.com/OCAP2/armory/internal/monitor"
	"github.com/OCAP2/armory/internal/storage/memory"
	"github.com/OCAP2/armory/internal/util"
	"github.com/OCAP2/armory/internal/worker"
	"github.com/OCAP2/armory/pkg/core"
)

// demoStart is the first day of a demo campaign.
var demoStart = time.Date(3025, time.January, 1, 0, 0, 0, 0, time.UTC)

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `%s %s (%s)

usage: %s [-config <dir>] <command> [args]

  demo [name]                    build the sample lance, run one day and save it
  status <file>                  print the rosters of an exported campaign file
  list                           list saved campaigns
  advance <campaign> <days>      run the repair scheduler for a number of days
  shell <campaign>               interactive session with autosave
  <action> <campaign> [args]     run one action and save, e.g.
                                 reload "Atlas AS7-D" 1
`, AppName, CurrentVersion, BuildDate, AppName)
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "demo":
		name := "Demo Lance"
		if len(args) > 0 {
			name = args[0]
		}
		return a.runDemo(ctx, name)
	case "status":
		if len(args) < 1 {
			return errors.New("status needs a campaign file")
		}
		return a.runStatusFile(ctx, args[0])
	case "list":
		names, err := a.backend.ListCampaigns(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	case "advance":
		if len(args) < 2 {
			return errors.New("advance needs <campaign> <days>")
		}
		if _, err := strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid day count %q", args[1])
		}
		return a.runAction(ctx, args[0], "advance", args[1:])
	case "shell":
		if len(args) < 1 {
			return errors.New("shell needs a campaign name")
		}
		return a.runShell(ctx, args[0], os.Stdin, os.Stdout)
	default:
		if len(args) < 1 {
			return fmt.Errorf("%s needs a campaign name", cmd)
		}
		return a.runAction(ctx, args[0], cmd, args[1:])
	}
}

// session is a campaign wired to a worker and dispatcher.
type session struct {
	c *campaign.Campaign
	w *worker.Manager
	d *dispatcher.Dispatcher
}

func (a *app) newSession(c *campaign.Campaign) (*session, error) {
	a.current = c
	w := worker.NewManager(worker.Dependencies{Campaign: c, Backend: a.backend, Logger: a.logger})
	d, err := dispatcher.New(logging.NewDispatcherLogger(a.dbLog))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	w.RegisterHandlers(d)
	return &session{c: c, w: w, d: d}, nil
}

func (s *session) do(ctx context.Context, cmd string, args ...string) (string, error) {
	res, err := s.d.Dispatch(dispatcher.Event{Context: ctx, Command: cmd, Args: args})
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	return fmt.Sprint(res), nil
}

// finish queues a final save when anything changed and drains the queue.
func (s *session) finish(ctx context.Context) {
	if s.c.Changes() > 0 {
		_, _ = s.do(ctx, "save")
	}
	s.d.Close()
}

func (a *app) loadCampaign(ctx context.Context, name string) (*campaign.Campaign, error) {
	rec, err := a.backend.LoadCampaign(ctx, name)
	if err != nil {
		return nil, err
	}
	deps, err := a.campaignDeps()
	if err != nil {
		return nil, err
	}
	return campaign.Restore(*rec, deps)
}

func (a *app) runDemo(ctx context.Context, name string) error {
	deps, err := a.campaignDeps()
	if err != nil {
		return err
	}
	c := campaign.New(name, demoStart, deps)
	for _, u := range campaign.DemoLance() {
		if _, err := c.AddUnit(u); err != nil {
			return err
		}
	}
	if err := campaign.SeedDemoStock(c.Quartermaster()); err != nil {
		return err
	}

	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.finish(ctx)

	for _, step := range [][]string{{"status"}, {"refresh"}, {"advance", "1"}, {"status"}, {"stock"}} {
		out, err := s.do(ctx, step[0], step[1:]...)
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimRight(out, "\n"))
	}
	return nil
}

func (a *app) runStatusFile(ctx context.Context, path string) error {
	rec, err := memory.ReadFile(path)
	if err != nil {
		return err
	}
	deps, err := a.campaignDeps()
	if err != nil {
		return err
	}
	c, err := campaign.Restore(*rec, deps)
	if err != nil {
		return err
	}
	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.d.Close()

	out, err := s.do(ctx, "status")
	if err != nil {
		return err
	}
	fmt.Print(out)
	for _, e := range c.Units().All() {
		out, err := s.do(ctx, "status", e.Unit.ID.String())
		if err != nil {
			return err
		}
		fmt.Print(out)
	}
	return nil
}

func (a *app) runAction(ctx context.Context, name, cmd string, args []string) error {
	c, err := a.loadCampaign(ctx, name)
	if err != nil {
		return err
	}
	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.finish(ctx)

	out, err := s.do(ctx, cmd, args...)
	if err != nil {
		return err
	}
	fmt.Println(strings.TrimRight(out, "\n"))
	return nil
}

func (a *app) runShell(ctx context.Context, name string, in io.Reader, out io.Writer) error {
	c, err := a.loadCampaign(ctx, name)
	if errors.Is(err, core.ErrCampaignNotFound) {
		deps, derr := a.campaignDeps()
		if derr != nil {
			return derr
		}
		a.logger.Info("Starting new campaign", "campaign", name)
		c = campaign.New(name, demoStart, deps)
	} else if err != nil {
		return err
	}

	s, err := a.newSession(c)
	if err != nil {
		return err
	}
	defer s.finish(ctx)

	monCfg := config.GetMonitorConfig()
	mon := monitor.NewService(monitor.Dependencies{
		Worker:     s.w,
		Dispatcher: s.d,
		Logger:     a.logger,
		StatusPath: monCfg.StatusFile,
		Interval:   monCfg.Interval,
		MinChanges: monCfg.AutosaveChanges,
	})
	if err := mon.Start(ctx); err != nil {
		return err
	}
	defer mon.Stop()

	scanner := bufio.NewScanner(in)
	fmt.Fprintf(out, "%s> ", name)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		words := util.SplitArgs(scanner.Text())
		switch {
		case len(words) == 0:
		case words[0] == "quit" || words[0] == "exit":
			return nil
		case words[0] == "help":
			for _, cmd := range s.d.Commands() {
				fmt.Fprintf(out, "  %-10s %s\n", cmd[0], cmd[1])
			}
		default:
			res, err := s.do(ctx, words[0], words[1:]...)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			} else if res != "" {
				fmt.Fprintln(out, strings.TrimRight(res, "\n"))
			}
		}
		fmt.Fprintf(out, "%s> ", name)
	}
	return scanner.Err()
}
