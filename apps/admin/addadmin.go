package main

import (
	"context"
	"fmt"
)

// addAdmin creates an admin account, or promotes an existing user.
func (cli *commandLine) addAdmin(ctx context.Context, uname, pwd, fullName string) error {
	usr, err := cli.usrSvc.SaveAdmin(ctx, uname, pwd, fullName)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %q saved\n", usr.Username)
	return nil
}
