package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repetix/repetix-api/internal/domain"
	"github.com/repetix/repetix-api/internal/service/auth"
)

// newHashPasswordCmd prints bcrypt hashes for seeding users by hand. It does
// not touch the database or read the config file.
func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password [PASSWORD...]",
		Short: "Print bcrypt hashes of passwords",
		Long: `Hashes each PASSWORD with bcrypt and prints one hash per line.
Without arguments the passwords are read from stdin, one per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			passwords := args
			if len(passwords) == 0 {
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for scanner.Scan() {
					if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
						passwords = append(passwords, line)
					}
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read passwords: %w", err)
				}
			}

			hasher := auth.NewBcryptHasher(cost)
			for _, password := range passwords {
				if err := domain.ValidatePassword(password); err != nil {
					return err
				}
				hash, err := hasher.Hash(password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 10, "bcrypt cost factor")
	return cmd
}
