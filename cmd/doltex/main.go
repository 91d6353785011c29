package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bodgit/doltex"
	"github.com/urfave/cli/v2"
)

const defaultDB = "doltex.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func prefix(c *cli.Context) []byte {
	if p := c.String("prefix"); p != "" {
		return []byte(p)
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "doltex"
	app.Usage = "PS2 StudioModel texture extraction utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"DOLTEX_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to texture catalog",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "extract",
			Usage:       "Extract textures found by marker scan as indexed BMPs",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "output, o",
					Value: cwd,
					Usage: "directory to write images to",
				},
				&cli.StringFlag{
					Name:  "prefix",
					Usage: "texture name marker to scan for",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 1,
					Usage: "integer upscale factor",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d := doltex.New(nil, newLogger(c))

				saved, total, err := d.ExtractFile(c.Args().First(), c.String("output"), prefix(c), c.Int("scale"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("Saved %d of %d textures\n", saved, total)

				return nil
			},
		},
		{
			Name:        "info",
			Usage:       "Show container header fields and texture table",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d := doltex.New(nil, newLogger(c))

				if err := d.Info(c.Args().First(), os.Stdout); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "export",
			Usage:       "Export container textures as 8-bit PNGs",
			Description: "",
			ArgsUsage:   "FILE [INDEX]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "output, o",
					Value: cwd,
					Usage: "directory to write images to",
				},
				&cli.BoolFlag{
					Name:  "all, a",
					Usage: "export every texture",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 1,
					Usage: "integer upscale factor",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d := doltex.New(nil, newLogger(c))

				if c.Bool("all") {
					saved, total, err := d.ExportAll(c.Args().First(), c.String("output"), c.Int("scale"))
					if err != nil {
						return cli.NewExitError(err, 1)
					}

					fmt.Printf("Saved %d of %d textures\n", saved, total)

					return nil
				}

				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				index, err := strconv.Atoi(c.Args().Get(1))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				path, err := d.Export(c.Args().First(), index, c.String("output"), c.Int("scale"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("Saved %s\n", path)

				return nil
			},
		},
		{
			Name:        "batch",
			Usage:       "Extract textures from every binary under a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				d := doltex.New(nil, newLogger(c))

				if err := d.Batch(c.Args().First()); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "catalog",
			Usage:       "Record discovered textures in the catalog",
			Description: "",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "prefix",
					Usage: "texture name marker to scan for",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := doltex.OpenDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer db.Close()

				d := doltex.New(db, newLogger(c))

				added, err := d.Catalog(c.Args().First(), prefix(c))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				fmt.Printf("Cataloged %d new textures\n", added)

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
