package main

import (
	"log"
	"os"

	"github.com/tomeducation/admin/core"
	logsvc "github.com/tomeducation/admin/services/logger"
	notifsvc "github.com/tomeducation/admin/services/notifier"
	sessionstore "github.com/tomeducation/admin/storage/session"
)

func main() {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds)

	var logger core.Logger
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	repo, err := sessionstore.NewFileRepository()
	if err != nil {
		logger.Fatal("setting up session storage", err)
	}

	sh := newShell(repo, notifsvc.NewConsoleNotifier(), logger)
	if err := sh.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("command failed", err)
		}
		os.Exit(1)
	}
}
