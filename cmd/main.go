package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/app"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/client"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/database"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/feed"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var Version string

func main() {
	_ = godotenv.Load()
	app.SetupLogger(app.GetLogConfig())

	if err := newApp().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = "gridctl"
	cliApp.Usage = "Pairs and positions tracker"
	cliApp.Version = Version

	cliApp.Commands = []cli.Command{
		serveCMD,
		migrateCMD,
		feedCMD,
		pairsCMD,
		positionsCMD,
	}
	return cliApp
}

var apiFlag = cli.StringFlag{
	Name:   "api",
	Value:  "http://localhost:3001",
	Usage:  "base URL of a running API",
	EnvVar: "API_URL",
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the API and the feed listener",
		Action:      serveAction,
		Description: `Run the HTTP API and the market feed listener until interrupted`,
	}
	migrateCMD = cli.Command{
		Name:        "migrate",
		Usage:       "create missing tables and run data migrations",
		Action:      migrateAction,
		Description: `Ensure the storage schema and exit`,
	}
	feedCMD = cli.Command{
		Name:        "feed",
		Usage:       "run only the market feed listener",
		Action:      feedAction,
		Description: `Subscribe to the configured feed topic and log updates`,
	}
	pairsCMD = cli.Command{
		Name:  "pairs",
		Usage: "list or create pairs through the API",
		Subcommands: []cli.Command{
			{
				Name:   "list",
				Usage:  "list pairs, newest first",
				Flags:  []cli.Flag{apiFlag},
				Action: pairsListAction,
			},
			{
				Name:  "create",
				Usage: "create a pair",
				Flags: []cli.Flag{
					apiFlag,
					cli.StringFlag{Name: "symbol", Usage: "instrument symbol, e.g. BTCUSD"},
					cli.StringFlag{Name: "momentum", Usage: "LONG or SHORT"},
					cli.Float64Flag{Name: "upper", Usage: "upper range"},
					cli.Float64Flag{Name: "lower", Usage: "lower range"},
				},
				Action: pairsCreateAction,
			},
		},
	}
	positionsCMD = cli.Command{
		Name:  "positions",
		Usage: "list, open or close positions through the API",
		Subcommands: []cli.Command{
			{
				Name:   "list",
				Usage:  "list positions with their pair symbol",
				Flags:  []cli.Flag{apiFlag},
				Action: positionsListAction,
			},
			{
				Name:  "open",
				Usage: "open a position",
				Flags: []cli.Flag{
					apiFlag,
					cli.UintFlag{Name: "pair", Usage: "pair id (optional)"},
					cli.Float64Flag{Name: "entry", Usage: "entry price"},
					cli.Float64Flag{Name: "amount", Usage: "position amount"},
					cli.StringFlag{Name: "type", Usage: "LONG or SHORT"},
				},
				Action: positionsOpenAction,
			},
			{
				Name:      "close",
				Usage:     "close a position",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					apiFlag,
					cli.Float64Flag{Name: "pct", Usage: "profit percentage"},
					cli.Float64Flag{Name: "usdt", Usage: "profit in USDT"},
				},
				Action: positionsCloseAction,
			},
		},
	}
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func serveAction(_ *cli.Context) error {
	logrus.WithField("cmd", "serve").Info("Starting API")

	ctx, stop := signalContext()
	defer stop()

	return app.Run(ctx, app.GetConfig())
}

func migrateAction(_ *cli.Context) error {
	logrus.WithField("cmd", "migrate").Info("Ensuring schema")

	db, err := app.OpenStorage(database.GetConfig())
	if err != nil {
		return err
	}
	return database.Close(db)
}

func feedAction(_ *cli.Context) error {
	config := feed.GetConfig()
	logrus.WithFields(logrus.Fields{"cmd": "feed", "topic": config.Topic}).Info("Starting feed listener")

	ctx, stop := signalContext()
	defer stop()

	return feed.NewListener(config).Run(ctx, feed.LogUpdate)
}

func pairsListAction(c *cli.Context) error {
	pairs, err := client.New(c.String("api")).ListPairs(context.Background())
	if err != nil {
		return err
	}
	return printJSON(pairs)
}

func pairsCreateAction(c *cli.Context) error {
	payload := model.CreatePairPayload{
		Symbol:   c.String("symbol"),
		Momentum: c.String("momentum"),
	}
	if c.IsSet("upper") {
		upper := c.Float64("upper")
		payload.UpperRange = &upper
	}
	if c.IsSet("lower") {
		lower := c.Float64("lower")
		payload.LowerRange = &lower
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	pair, err := client.New(c.String("api")).CreatePair(context.Background(), payload)
	if err != nil {
		return err
	}
	return printJSON(pair)
}

func positionsListAction(c *cli.Context) error {
	positions, err := client.New(c.String("api")).ListPositions(context.Background())
	if err != nil {
		return err
	}
	return printJSON(positions)
}

func positionsOpenAction(c *cli.Context) error {
	payload := model.CreatePositionPayload{Type: c.String("type")}
	if c.IsSet("pair") {
		payload.PairID = model.PairRef(c.Uint("pair"))
	}
	if c.IsSet("entry") {
		entry := c.Float64("entry")
		payload.EntryPrice = &entry
	}
	if c.IsSet("amount") {
		amount := c.Float64("amount")
		payload.Amount = &amount
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	position, err := client.New(c.String("api")).OpenPosition(context.Background(), payload)
	if err != nil {
		return err
	}
	return printJSON(position)
}

func positionsCloseAction(c *cli.Context) error {
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid position id %q", c.Args().First())
	}

	payload := model.ClosePositionPayload{}
	if c.IsSet("pct") {
		pct := c.Float64("pct")
		payload.ProfitPercentage = &pct
	}
	if c.IsSet("usdt") {
		usdt := c.Float64("usdt")
		payload.ProfitUSDT = &usdt
	}
	if err := payload.Validate(); err != nil {
		return err
	}

	if err := client.New(c.String("api")).ClosePosition(context.Background(), uint(id), payload); err != nil {
		return err
	}
	return printJSON(map[string]bool{"success": true})
}
