package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	if err := cli.usrSvc.ResetPassword(ctx, uname, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %q reset\n", uname)
	return nil
}
