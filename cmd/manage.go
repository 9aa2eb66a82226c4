package cmd

import (
	"fmt"

	"quill/models"
	"quill/services"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		closeDB(db)
		fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date.")
		return nil
	},
}

var (
	superUsername string
	superEmail    string
	superPassword string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an active staff account holding every permission",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)

		user, err := services.NewUserService(db).CreateSuperuser(cmd.Context(), superUsername, superEmail, superPassword)
		if verr, ok := services.AsValidation(err); ok {
			return fmt.Errorf("invalid superuser: %s", verr.Error())
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Superuser %q created.\n", user.Username)
		return nil
	},
}

var (
	grantUsername string
	grantPerm     string
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Grant a permission to a user",
	Long: fmt.Sprintf(`Grant a permission codename to an existing user.

Known permissions: %s, %s`, models.PermCreateComment, models.PermPublishPost),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := services.NewUserService(db).GrantPermission(cmd.Context(), grantUsername, grantPerm); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s.\n", grantPerm, grantUsername)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, createSuperuserCmd, grantCmd)

	createSuperuserCmd.Flags().StringVar(&superUsername, "username", "", "account username")
	createSuperuserCmd.Flags().StringVar(&superEmail, "email", "", "account email")
	createSuperuserCmd.Flags().StringVar(&superPassword, "password", "", "account password")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("password")

	grantCmd.Flags().StringVar(&grantUsername, "username", "", "account username")
	grantCmd.Flags().StringVar(&grantPerm, "perm", "", "permission codename")
	_ = grantCmd.MarkFlagRequired("username")
	_ = grantCmd.MarkFlagRequired("perm")
}
