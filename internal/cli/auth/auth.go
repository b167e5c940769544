package auth

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/logger"
)

type LoginCmd struct {
	Email    string `help:"Account email." env:"HABITUAL_EMAIL"`
	Password string `help:"Account password. Prompted for when omitted."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	err := cli.PromptMissing(
		cli.Field{Title: "Email", Value: &c.Email},
		cli.Field{Title: "Password", Value: &c.Password, Secret: true},
	)
	if err != nil {
		return err
	}

	user, err := ctx.API.Login(ctx.Context(), api.Credentials{Email: c.Email, Password: c.Password})
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return fmt.Errorf("invalid email or password")
		}
		return err
	}
	logger.Info("Logged in", "user", user.ID)

	if !ctx.API.HasToken() {
		ctx.Println("⚠ Logged in, but the service returned no token. Later requests may fail.")
	}
	ctx.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

type SignupCmd struct {
	Name     string `help:"Display name."`
	Email    string `help:"Account email." env:"HABITUAL_EMAIL"`
	Password string `help:"Account password. Prompted for when omitted."`
}

func (c *SignupCmd) Run(ctx *cli.Context) error {
	err := cli.PromptMissing(
		cli.Field{Title: "Name", Value: &c.Name},
		cli.Field{Title: "Email", Value: &c.Email},
		cli.Field{Title: "Password", Value: &c.Password, Secret: true},
	)
	if err != nil {
		return err
	}
	if len(c.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	user, err := ctx.API.Register(ctx.Context(), api.Registration{Name: c.Name, Email: c.Email, Password: c.Password})
	if err != nil {
		return err
	}
	logger.Info("Registered account", "user", user.ID)
	ctx.Printf("Welcome, %s! Your account is ready.\n", user.Name)
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if !ctx.API.HasToken() {
		ctx.Println("Not logged in.")
		return nil
	}
	if err := ctx.API.Logout(ctx.Context()); err != nil {
		// The local token is gone either way
		logger.Warn("Logout request failed", "error", err)
		ctx.Println("Logged out locally (the service could not be reached).")
		return nil
	}
	ctx.Println("Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	if err := ctx.RequireLogin(); err != nil {
		return err
	}
	user, err := ctx.API.CurrentUser(ctx.Context())
	if err != nil {
		return err
	}
	ctx.Printf("%s <%s>\n", user.Name, user.Email)
	ctx.Printf("  ID:     %s\n", user.ID)
	ctx.Printf("  Server: %s\n", ctx.API.BaseURL())
	return nil
}
