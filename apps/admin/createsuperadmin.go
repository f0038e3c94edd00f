package main

import (
	"context"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/user"
)

// createSuperAdmin promotes an existing user to super admin, or creates one.
func (cli *commandLine) createSuperAdmin(email, name, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	usr, err := cli.usrRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Email:       email,
			DisplayName: name,
			Role:        user.RoleSuperAdmin,
			CreatedAt:   core.Now(),
		}
		if usr.DisplayName == "" {
			usr.DisplayName = "Super Admin"
		}
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if name != "" {
		usr.DisplayName = name
	}
	if _, err := cli.usrRepo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	if !usr.IsSuperAdmin() {
		if _, err := cli.usrRepo.SetUserRole(ctx, usr.UID, user.RoleSuperAdmin); err != nil {
			return err
		}
	}
	return nil
}
