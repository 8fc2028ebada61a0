package cli

import (
	"fmt"

	"github.com/sethvargo/go-password/password"
	"github.com/spf13/cobra"

	"todolists/services/users"
)

const generatedPasswordLength = 16

func userCmd(configPath *string) *cobra.Command {
	c := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	c.AddCommand(userCreateCmd(configPath))
	return c
}

func userCreateCmd(configPath *string) *cobra.Command {
	var pass string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create an account, generating a password when none is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			generated := pass == ""
			if generated {
				var err error
				pass, err = password.Generate(generatedPasswordLength, 4, 0, false, true)
				if err != nil {
					return fmt.Errorf("generate password: %w", err)
				}
			}

			e, err := openEnv(*configPath)
			if err != nil {
				return err
			}
			defer e.Close()

			user, err := users.NewService(e.db.Users).Register(cmd.Context(), args[0], pass, pass)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created user %q (id %d)\n", user.Username, user.ID)
			if generated {
				fmt.Fprintf(out, "password: %s\n", pass)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&pass, "password", "p", "", "password (generated when omitted)")
	return cmd
}
