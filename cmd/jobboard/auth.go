package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(c *cli) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as administrator",
		Long:  "Log in as administrator. The password is read from stdin when --password is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			session, err := c.open()
			if err != nil {
				return err
			}
			user, err := session.Login(cmd.Context(), username, password)
			if err != nil {
				return apiError(err)
			}
			c.printf("Logged in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "Admin username")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the admin token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := c.open()
			if err != nil {
				return err
			}
			if err := session.Logout(cmd.Context()); err != nil {
				return err
			}
			c.printf("Logged out\n")
			return nil
		},
	}
}
