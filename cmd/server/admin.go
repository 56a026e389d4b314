package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voltaic/energy-cms/internal/app"
)

// readPassword is a seam for tests; it reads from the terminal without echo.
var readPassword = term.ReadPassword

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Provision an admin account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		password := adminPassword
		if password == "" {
			pw, err := promptPassword(cmd.ErrOrStderr(), int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			password = pw
		}

		a, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Services().Auth.Provision(cmd.Context(), adminEmail, adminName, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin %s created (id %d)\n", user.Email, user.ID)
		return nil
	},
}

// promptPassword asks for the password twice and returns it when both entries match.
func promptPassword(w io.Writer, fd int) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	fmt.Fprint(w, "Confirm password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	if !bytes.Equal(first, second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email (required)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password; prompted when omitted")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("name")
}
