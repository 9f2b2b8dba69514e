package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "raffle"
	s.app.Usage = "Provably fair raffle on a local chain"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Value: "config.toml",
			Usage: "Path of the toml configuration file",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Value: ".env",
			Usage: "Path of the dotenv file, ignored if missing",
		},
	}
	s.app.Before = s.loadConfig
	s.app.After = s.stop
	s.app.Commands = []*cli.Command{
		{
			Action:   s.startApi,
			Name:     "api",
			Usage:    "Start the api server",
			Category: "Server",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "with-keeper",
					Usage: "Run the keeper in the same process",
				},
			},
			Description: `Serves the raffle apis, the operator apis and the event stream. On ` +
				`development chains the mocks are deployed on first start.`,
		},
		{
			Action:      s.startKeeper,
			Name:        "keeper",
			Usage:       "Start the keeper",
			Category:    "Server",
			Description: `Checks every raffle on the active network and performs the upkeep when needed.`,
		},
		{
			Action:      s.startEvents,
			Name:        "events",
			Usage:       "Consume the chain events from kafka",
			Category:    "Server",
			Description: `Logs every event published by the chain on the kafka events topic.`,
		},
		{
			Action:   s.runDeploy,
			Name:     "deploy",
			Usage:    "Deploy the mocks and the raffle",
			Category: "Script",
		},
		{
			Action:   s.runUpdateFrontend,
			Name:     "update-frontend",
			Usage:    "Write the contract addresses and the abi for the frontend",
			Category: "Script",
		},
		{
			Action:   s.runEnter,
			Name:     "enter",
			Usage:    "Enter the raffle with the entrance fee plus one wei",
			Category: "Script",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "address", Usage: "Raffle address, defaults to the latest deployment"},
				&cli.StringFlag{Name: "from", Usage: "Player account, defaults to the deployer"},
			},
		},
		{
			Action:   s.runUpkeep,
			Name:     "upkeep",
			Usage:    "Perform the upkeep and fulfill the request on development chains",
			Category: "Script",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "address", Usage: "Raffle address, defaults to the latest deployment"},
			},
		},
		{
			Action:   s.runToken,
			Name:     "token",
			Usage:    "Issue an operator token",
			Category: "Script",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true, Usage: "Operator name"},
			},
		},
		{
			Action:   s.runMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Script",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "version", Usage: "Run a single migrator instead of the full migration"},
			},
		},
	}
}
