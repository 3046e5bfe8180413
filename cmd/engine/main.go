package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/quantex/auto-engine/internal/domain"
	"github.com/quantex/auto-engine/internal/infrastructure/logger"
	"github.com/quantex/auto-engine/internal/infrastructure/scenario"
	"github.com/quantex/auto-engine/internal/infrastructure/storage"
	"github.com/quantex/auto-engine/internal/usecase"
)

type Config struct {
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Logging.Level = "info"
	cfg.Storage.DBPath = "auto-engine.db"
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type app struct {
	cfg *Config
	log *zap.Logger
}

func (a *app) init(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	if cfg.Logging.File != "" {
		a.log, err = logger.NewFileLogger(cfg.Logging.File, cfg.Logging.Level)
	} else {
		a.log, err = logger.NewLogger(cfg.Logging.Level)
	}
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

func loadSettings(path string) (*domain.AutoTradingSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var settings domain.AutoTradingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return &settings, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	a := &app{}
	var configPath string
	var settingsPath, scenarioPath, symbol, direction, category string

	root := &cobra.Command{
		Use:   "auto-engine",
		Short: "Condition evaluation and order planning for automated trading",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(configPath)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	evaluate := &cobra.Command{
		Use:   "evaluate",
		Short: "Run one evaluation cycle against a scenario file",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			scn, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}
			if symbol == "" {
				symbol = scn.Symbol
			}
			provider := scenario.NewProvider(scn)
			engine := usecase.NewEngine(provider, provider, provider, a.log)
			eval, err := engine.EvaluateSymbol(context.Background(), settings, symbol,
				domain.PositionDirection(direction), usecase.Category(category))
			if err != nil {
				return err
			}
			return printJSON(eval)
		},
	}
	evaluate.Flags().StringVar(&settingsPath, "settings", "", "path to settings JSON")
	evaluate.Flags().StringVar(&scenarioPath, "scenario", "", "path to scenario JSON")
	evaluate.Flags().StringVar(&symbol, "symbol", "", "symbol (defaults to the scenario's)")
	evaluate.Flags().StringVar(&direction, "direction", "long", "long or short")
	evaluate.Flags().StringVar(&category, "category", "entry", "entry, scale_in, exit, stop_loss or hedge")
	evaluate.MarkFlagRequired("settings")
	evaluate.MarkFlagRequired("scenario")

	plan := &cobra.Command{
		Use:   "plan",
		Short: "Run one evaluation cycle and print only the planned orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			scn, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}
			if symbol == "" {
				symbol = scn.Symbol
			}
			provider := scenario.NewProvider(scn)
			engine := usecase.NewEngine(provider, provider, provider, a.log)
			eval, err := engine.EvaluateSymbol(context.Background(), settings, symbol,
				domain.PositionDirection(direction), usecase.Category(category))
			if err != nil {
				return err
			}
			return printJSON(eval.Orders)
		},
	}
	plan.Flags().StringVar(&settingsPath, "settings", "", "path to settings JSON")
	plan.Flags().StringVar(&scenarioPath, "scenario", "", "path to scenario JSON")
	plan.Flags().StringVar(&symbol, "symbol", "", "symbol (defaults to the scenario's)")
	plan.Flags().StringVar(&direction, "direction", "long", "long or short")
	plan.Flags().StringVar(&category, "category", "entry", "entry, scale_in, exit, stop_loss or hedge")
	plan.MarkFlagRequired("settings")
	plan.MarkFlagRequired("scenario")

	lookback := &cobra.Command{
		Use:   "lookback",
		Short: "Print the candle lookback each condition tree needs",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			calc := usecase.NewIndicatorCalculator()
			out := map[string]int{}
			collect := func(name string, tree domain.IndicatorConditions) {
				entries := domain.CollectIndicatorNodes(tree.Root)
				specs := make([]domain.IndicatorEntry, 0, len(entries))
				for _, n := range entries {
					specs = append(specs, *n.Indicator)
				}
				out[name] = calc.RequiredLookback(specs)
			}
			for dir, s := range settings.Entry {
				if s != nil {
					collect("entry/"+string(dir), s.Indicators)
				}
			}
			for dir, s := range settings.ScaleIn {
				if s != nil {
					collect("scale_in/"+string(dir), s.Indicators)
				}
			}
			for dir, s := range settings.Exit {
				if s != nil {
					collect("exit/"+string(dir), s.Indicators)
				}
			}
			collect("stop_loss", settings.StopLoss.Indicators)
			collect("hedge", settings.HedgeActivation.Indicators)
			return printJSON(out)
		},
	}
	lookback.Flags().StringVar(&settingsPath, "settings", "", "path to settings JSON")
	lookback.MarkFlagRequired("settings")

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage stored settings documents",
	}

	settingsSave := &cobra.Command{
		Use:   "save",
		Short: "Store a settings JSON file under its logic name",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(settingsPath)
			if err != nil {
				return err
			}
			store, err := storage.NewSQLiteStore(a.cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveSettings(context.Background(), settings); err != nil {
				return err
			}
			a.log.Info("settings saved", zap.String("logic_name", settings.LogicName))
			return nil
		},
	}
	settingsSave.Flags().StringVar(&settingsPath, "settings", "", "path to settings JSON")
	settingsSave.MarkFlagRequired("settings")

	settingsList := &cobra.Command{
		Use:   "list",
		Short: "List stored settings documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore(a.cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			names, err := store.ListSettings(context.Background())
			if err != nil {
				return err
			}
			return printJSON(names)
		},
	}

	settingsShow := &cobra.Command{
		Use:   "show [logic-name]",
		Short: "Print a stored settings document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewSQLiteStore(a.cfg.Storage.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()
			settings, err := store.LoadSettings(context.Background(), args[0])
			if err != nil {
				return err
			}
			return printJSON(settings)
		},
	}

	settingsCmd.AddCommand(settingsSave, settingsList, settingsShow)
	root.AddCommand(evaluate, plan, lookback, settingsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
