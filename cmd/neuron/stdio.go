package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neuronhq/neuron"
	"github.com/neuronhq/neuron/internal/config"
	"github.com/neuronhq/neuron/internal/log"
	"github.com/neuronhq/neuron/internal/mcp"
)

func stdioCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Start MCP server on stdio",
		Long: `Start the MCP (Model Context Protocol) server on stdio.

This lets AI assistants search and ask questions about indexed projects.
Configuration is loaded from environment variables and .env file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(envFile)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")

	return cmd
}

func runStdio(envFile string) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol, so force logs to stderr as JSON.
	logger := log.NewLoggerWithWriter(os.Stderr, config.LogFormatJSON, cfg.LogLevel())
	log.SetDefaultLogger(logger)

	client, err := neuron.New(
		neuron.WithConfig(cfg),
		neuron.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create neuron client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close neuron client", "error", err)
		}
	}()

	logger.Info("starting MCP server", "version", version)

	server := mcp.NewServer(client.Projects, client.Retrieval, client.Answers, logger)
	return server.ServeStdio()
}
