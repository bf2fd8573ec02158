package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/heyfey/priosched/config"
	"github.com/urfave/cli/v2"
)

func debugURL(c *cli.Context, entryPoint string) string {
	return "http://" + c.String("addr") + entryPoint
}

func snapshotAction(c *cli.Context) error {
	return printGet(debugURL(c, config.DebugEntryPointSnapshot))
}

func planAction(c *cli.Context) error {
	return printGet(debugURL(c, config.DebugEntryPointPlan))
}

func healthzAction(c *cli.Context) error {
	return printGet(debugURL(c, "/healthz"))
}

func printGet(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}
