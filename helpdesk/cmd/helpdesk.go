// Command-line interface for the helpdesk backend
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"helpdesk/helpdesk/bootstrap"
	"helpdesk/helpdesk/config"
	"helpdesk/helpdesk/controllers"
	"helpdesk/helpdesk/sources/psql"
	"helpdesk/helpdesk/utils/apperr"
	"helpdesk/helpdesk/utils/color"
	"helpdesk/helpdesk/utils/jsonutils"
	"helpdesk/helpdesk/utils/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logging.InitLoggerIn(cfg.LogDir)
	defer logging.Sync()

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		color.SetEnabled(false)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "chat":
		err = runChat(cfg, argAt(args, 1))
	case "history":
		err = runHistory(cfg, argAt(args, 1))
	case "transcript":
		err = runTranscript(cfg, argAt(args, 1))
	case "migrate":
		err = runMigrate(cfg)
	case "token":
		err = runToken(cfg, argAt(args, 1), argAt(args, 2))
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		logging.ErrorLogger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintln(os.Stderr, color.Error("error: "+err.Error()))
		logging.Sync()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("helpdesk CLI usage:")
	fmt.Println("  helpdesk chat [sessionId]        # talk to the support agent")
	fmt.Println("  helpdesk history <sessionId>     # print the latest messages of a session")
	fmt.Println("  helpdesk transcript <sessionId>  # print an archived transcript")
	fmt.Println("  helpdesk migrate                 # create or update the database schema")
	fmt.Println("  helpdesk token [subject] [ttl]   # mint an admin token (ttl like 12h)")
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func open(cfg config.Config) (*bootstrap.Services, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return bootstrap.Open(ctx, cfg)
}

func runChat(cfg config.Config, sessionID string) error {
	svc, err := open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	fmt.Println(color.Info("Connected to the support agent (" + svc.Generator.ProviderName() + ")."))
	if sessionID != "" {
		fmt.Println("Resuming session:", sessionID)
	}
	fmt.Println("Type your question or 'exit' to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.Prompt("you> "))
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "exit" || trimmed == "quit" {
			fmt.Println("👋 Goodbye!")
			break
		}
		if trimmed == "" {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		res, err := svc.Orchestrator.HandleTurn(ctx, line, sessionID)
		cancel()
		if err != nil {
			fmt.Println(color.Warning(apperr.PublicMessage(err)))
			continue
		}
		if sessionID != res.SessionID {
			sessionID = res.SessionID
			fmt.Println(color.Session(sessionID))
		}
		fmt.Println(color.Agent(res.Reply))
		fmt.Println()
	}
	return scanner.Err()
}

func runHistory(cfg config.Config, sessionID string) error {
	svc, err := open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	entries, err := svc.Orchestrator.GetHistory(context.Background(), sessionID)
	if err != nil {
		return errors.New(apperr.PublicMessage(err))
	}
	return jsonutils.Write(os.Stdout, entries)
}

func runTranscript(cfg config.Config, sessionID string) error {
	svc, err := open(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	if svc.Archive == nil {
		return errors.New("transcript archive is not configured (MINIO_ENDPOINT)")
	}
	obj, err := svc.Archive.GetTranscript(context.Background(), sessionID)
	if err != nil {
		return err
	}
	return jsonutils.Write(os.Stdout, obj)
}

// runMigrate only needs the database; opening it applies the schema.
func runMigrate(cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Println(color.Success("Migrations completed successfully"))
	return nil
}

func runToken(cfg config.Config, subject, ttl string) error {
	var d time.Duration
	if ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return fmt.Errorf("invalid ttl %q: %w", ttl, err)
		}
		d = parsed
	}
	token, err := controllers.NewAuthController(cfg).IssueAdminToken(subject, d)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
