package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contentgate/server/internal/config"
	"contentgate/server/internal/intake"
	"contentgate/server/internal/logger"
	"contentgate/server/internal/submission"
	"contentgate/server/internal/validator"
)

// errInvalidContent 表示至少一份内容未通过校验，只影响退出码，不再额外打印。
var errInvalidContent = errors.New("content failed validation")

// app 保存所有子命令共享的全局参数与运行时依赖。
type app struct {
	configPath string
	verbose    bool
	logFormat  string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "contentgate",
		Short: "Validate interactive course content before it is published",
		Long: `contentgate checks course content documents (dialogue and quiz scenes)
against structural rules and size budgets, and estimates their load performance.

Run "contentgate serve" for the HTTP API, or validate files directly from the CLI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (.yaml or .toml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json (overrides config)")

	root.AddCommand(
		newServeCmd(a),
		newValidateCmd(a),
		newBrandingCmd(a),
		newWatchCmd(a),
	)
	return root
}

// init 加载配置并构建日志器。未指定配置文件时使用默认值加环境变量。
func (a *app) init() error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	} else {
		cfg := config.Default()
		cfg.ApplyEnv()
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
		a.cfg = cfg
	}

	level := a.cfg.Logging.Level
	if a.verbose {
		level = "debug"
	}
	format := a.cfg.Logging.Format
	if strings.TrimSpace(a.logFormat) != "" {
		format = a.logFormat
	}
	log, err := logger.New(format, level)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) newValidator() *validator.Validator {
	return validator.New(
		validator.WithLimits(a.cfg.Limits()),
		validator.WithLogger(a.log),
	)
}

func (a *app) newIntake(v *validator.Validator) *intake.Intake {
	return intake.New(v, submission.NewInMemoryStore(0), nil, a.log)
}
