package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/l1jgo/director/internal/config"
	"github.com/l1jgo/director/internal/data"
)

func tableCommand() *cli.Command {
	return &cli.Command{
		Name:  "table",
		Usage: "print the resolved wave table",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "area",
				Usage: "level area to resolve (default: level.area from the config)",
			},
		},
		Action: tableAction,
	}
}

func tableAction(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("load config: %v", err), 1)
	}
	area := cfg.Level.Area
	if c.IsSet("area") {
		area = c.Int("area")
	}
	table, err := data.LoadWaveTable(cfg.Data.WaveTable, area)
	if err != nil {
		return cli.Exit(fmt.Sprintf("wave table: %v", err), 1)
	}

	printSection("Archetypes")
	for _, a := range table.Archetypes() {
		printStat(a.ID, a.Class)
	}
	fmt.Println()

	printSection(fmt.Sprintf("Sections (area %d)", area))
	for s := 1; s <= table.SectionCount(); s++ {
		pool := table.Pool(s)
		ids := make([]string, len(pool))
		for i, a := range pool {
			ids[i] = a.ID
		}
		printStat(fmt.Sprintf("section %d", s), strings.Join(ids, ", "))
	}
	if w := table.Width(); w > 0 {
		printStat("area width", w)
	}
	fmt.Println()
	return nil
}
