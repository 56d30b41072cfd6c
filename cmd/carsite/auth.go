package main

import (
	"errors"

	"github.com/IvanTurko/carsite-client-go/auth"
	"github.com/spf13/cobra"
)

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var p auth.LoginPayload
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print the issued token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.session.Login(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&p.Email, "email", "", "account email")
	cmd.Flags().StringVar(&p.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(flags *globalFlags) *cobra.Command {
	var p auth.RegisterPayload
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.session.Register(cmd.Context(), p)
			if err != nil {
				return err
			}
			return a.print(res)
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "display name")
	cmd.Flags().StringVar(&p.Email, "email", "", "account email")
	cmd.Flags().StringVar(&p.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newMeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Print the signed-in user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if !a.svc.HasAuthToken() {
				return errors.New("no token: pass --token or set CARSITE_AUTH_TOKEN")
			}
			a.wantProfile.Store(true)
			profile, err := a.session.GetProfile(cmd.Context()).Await(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(profile)
		},
	}
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the session on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()

			if !remote {
				a.session.Logout()
				return a.print(map[string]bool{"loggedOut": true})
			}
			if err := a.session.LogoutRemote(cmd.Context()); err != nil {
				return err
			}
			return a.print(map[string]bool{"loggedOut": true})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", true, "notify the backend before forgetting the token")
	return cmd
}
