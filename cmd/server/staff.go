package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/library-api/internal/idgen"
	"github.com/library-api/internal/models"
	"github.com/library-api/internal/repository"
	"github.com/library-api/internal/service"
)

func newCreateStaffCmd() *cobra.Command {
	var in models.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff account that can manage tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer db.Close()

			ids, err := idgen.New(cfg.Snowflake.NodeID, log)
			if err != nil {
				return err
			}
			services, err := service.NewServices(repository.New(db), cfg, ids, nil, log)
			if err != nil {
				return err
			}

			author, err := services.Authors.CreateStaff(cmd.Context(), &in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created staff author %s (id %d)\n", author.UserName, author.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.UserName, "user-name", "", "account user name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	for _, name := range []string{"user-name", "email", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
