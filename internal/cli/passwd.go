package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/EgorLis/infdot-upload/internal/auth/password"
)

// passwd печатает argon2id-хэш для users.pass_hash
func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd [password]",
		Short: "Print an argon2id hash for seeding users.pass_hash",
		Long:  "Hashes the password given as argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var plain string
			if len(args) == 1 {
				plain = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				plain = strings.TrimRight(line, "\r\n")
			}
			if plain == "" {
				return errors.New("empty password")
			}

			hash, err := password.NewDefault().Hash(plain)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
