package main

import (
	"context"
	"fmt"
	"groupchat/domain"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	email    string
	password string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return authenticate(cmd, true)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in, the session is kept for the next runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return authenticate(cmd, false)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.backend.SignOut(cmd.Context()); err != nil {
			return err
		}
		success.Println("Signed out")
		return nil
	},
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the groups, ordered by name",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx, cancel := requestContext(cmd.Context())
		defer cancel()

		groups, err := a.backend.ListGroups(ctx)
		if err != nil {
			return err
		}
		table := newTable(cmd.OutOrStdout(), "ID", "Name")
		for _, g := range groups {
			table.Append([]string{strconv.FormatInt(int64(g.ID), 10), g.Name})
		}
		table.Render()
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <group-id> <text>...",
	Short: "Full-text search in the messages of a group",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid group id %q", args[0])
		}
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx, cancel := requestContext(cmd.Context())
		defer cancel()

		messages, err := a.backend.SearchMessages(ctx, domain.GroupID(id), strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		table := newTable(cmd.OutOrStdout(), "At", "Author", "Content")
		for _, m := range messages {
			table.Append([]string{m.CreatedAt.Local().Format("2006-01-02 15:04"), m.AuthorEmail, m.Content})
		}
		table.Render()
		return nil
	},
}

var success = color.New(color.FgGreen, color.OpBold)

func init() {
	for _, cmd := range []*cobra.Command{registerCmd, loginCmd} {
		cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
		cmd.Flags().StringVarP(&password, "password", "p", "", "Account password, prompted when empty")
		_ = cmd.MarkFlagRequired("email")
	}
}

func authenticate(cmd *cobra.Command, signUp bool) error {
	secret := password
	if secret == "" {
		var err error
		if secret, err = prompt(cmd.InOrStdin(), cmd.OutOrStdout(), "Password: "); err != nil {
			return err
		}
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()
	ctx, cancel := requestContext(cmd.Context())
	defer cancel()

	signIn := a.backend.SignIn
	if signUp {
		signIn = a.backend.SignUp
	}
	session, err := signIn(ctx, email, secret)
	if err != nil {
		return err
	}
	success.Printf("Signed in as %s until %s\n", session.User.Email, session.ExpiresAt.Local().Format("15:04"))
	return nil
}

func requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, config.RequestTimeout)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	if w == nil {
		w = os.Stdout
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}
