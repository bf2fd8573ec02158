package main

import (
	"os"
	"sort"

	"github.com/heyfey/priosched/config"
	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "schedctl"
	app.Version = config.Version
	app.Usage = "Inspect a running priosched scheduler"
	app.Description = "Queries a priosched debug service for its last snapshot, plan, or health"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "addr",
			Value: "localhost:" + config.Port,
			Usage: "`ADDR` of the scheduler's debug service",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "snapshot",
			Usage:  "Print the last cluster snapshot the driver built",
			Action: snapshotAction,
		},
		{
			Name:   "plan",
			Usage:  "Print the last plan the engine produced",
			Action: planAction,
		},
		{
			Name:   "healthz",
			Usage:  "Check whether the scheduler's debug service is up",
			Action: healthzAction,
		},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		klog.ErrorS(err, "schedctl failed")
		os.Exit(1)
	}
}
