package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/geeky-hamster/Quizme/storage/database"
)

var gooseRunFunc = database.Migrate // mockable

var errNoDatabase = errors.New("migrations need the postgres engine")

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	if cli.db == nil {
		return errNoDatabase
	}
	return gooseRunFunc(ctx, cli.db, args[0], args[1:]...)
}
