package main

import (
	"context"
	"fmt"

	"github.com/geeky-hamster/Quizme/core/notify"
)

// notify runs one batch of notifications and prints its report.
func (cli *commandLine) notify(ctx context.Context, period string) error {
	p, err := notify.PeriodByName(period)
	if err != nil {
		return err
	}
	report, err := cli.notifier.Run(ctx, p)
	if err != nil {
		return err
	}
	for _, line := range report.Lines {
		fmt.Fprintln(cli.out, line)
	}
	fmt.Fprintln(cli.out, report.String())
	return nil
}
