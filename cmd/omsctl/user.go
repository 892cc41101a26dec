// User and settings commands.
package main

import (
	"github.com/spf13/cobra"

	omsbridge "github.com/opengovern/oms-bridge"
)

func (a *app) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := a.bridge.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), user)
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session on the OMS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.bridge.Logout(cmd.Context()); err != nil {
				return err
			}
			a.session.Clear()
			return a.done(cmd.OutOrStdout(), "logout")
		},
	}
}

func (a *app) timezonesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timezones",
		Short: "List available time zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			zones, err := a.bridge.GetAvailableTimeZones(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), zones)
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <userId> <tzId>",
		Short: "Set a user's time zone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bridge.SetUserTimeZone(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return a.done(cmd.OutOrStdout(), "timezones set")
		},
	})
	return cmd
}

func (a *app) facilitiesCmd() *cobra.Command {
	var (
		partyID string
		groupID string
		admin   bool
	)
	cmd := &cobra.Command{
		Use:   "facilities",
		Short: "List the facilities a user may work in",
		Long: `List the facilities a user may work in.

Example:
  omsctl facilities --party 10001
  omsctl facilities --group PICKUP --admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := a.session.Credentials()
			facilities, err := a.bridge.GetUserFacilities(cmd.Context(), omsbridge.FacilityQuery{
				Token:           creds.Token,
				BaseURL:         creds.BaseURL,
				PartyID:         partyID,
				FacilityGroupID: groupID,
				IsAdminUser:     admin,
			})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), facilities)
		},
	}
	cmd.Flags().StringVar(&partyID, "party", "", "party id of the user")
	cmd.Flags().StringVar(&groupID, "group", "", "restrict to a facility group")
	cmd.Flags().BoolVar(&admin, "admin", false, "the user is an admin (no party filter)")
	return cmd
}

func (a *app) storesCmd() *cobra.Command {
	var (
		facilityID string
		viewSize   int
	)
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List product stores, optionally for one facility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds := a.session.Credentials()
			q := omsbridge.StoreQuery{Token: creds.Token, BaseURL: creds.BaseURL, ViewSize: viewSize, FacilityID: facilityID}

			var (
				stores []omsbridge.ProductStore
				err    error
			)
			if facilityID != "" {
				stores, err = a.bridge.GetEComStoresByFacility(cmd.Context(), q)
			} else {
				stores, err = a.bridge.GetEComStores(cmd.Context(), q)
			}
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), stores)
		},
	}
	cmd.Flags().StringVar(&facilityID, "facility", "", "only stores associated with this facility")
	cmd.Flags().IntVar(&viewSize, "view-size", 100, "maximum number of stores")
	return cmd
}

func (a *app) prefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pref",
		Short: "Read or write a user preference",
	}

	var userID string
	get := &cobra.Command{
		Use:   "get <prefTypeId>",
		Short: "Read a user preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := a.session.Credentials()
			value, err := a.bridge.GetUserPreference(cmd.Context(), omsbridge.PreferenceQuery{
				Token:      creds.Token,
				BaseURL:    creds.BaseURL,
				PrefTypeID: args[0],
				UserID:     userID,
			})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]string{"prefTypeId": args[0], "value": value})
		},
	}
	get.Flags().StringVar(&userID, "user", "", "user id (modern backend)")

	set := &cobra.Command{
		Use:   "set <prefTypeId> <value>",
		Short: "Write a user preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.bridge.SetUserPreference(cmd.Context(), omsbridge.UserPreference{
				UserID:     userID,
				PrefTypeID: args[0],
				Value:      args[1],
			})
			if err != nil {
				return err
			}
			return a.done(cmd.OutOrStdout(), "pref set")
		},
	}
	set.Flags().StringVar(&userID, "user", "", "user id (modern backend)")

	cmd.AddCommand(get, set)
	return cmd
}

func (a *app) identificationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identification",
		Short: "Read or write a product store's identification preference",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <productStoreId>",
		Short: "Read the identification preference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, err := a.bridge.GetProductIdentificationPref(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), pref)
		},
	})

	var secondary string
	set := &cobra.Command{
		Use:   "set <productStoreId> <primaryId>",
		Short: "Write the identification preference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pref, err := a.bridge.SetProductIdentificationPref(cmd.Context(), args[0], omsbridge.ProductIdentificationPref{
				PrimaryID:   args[1],
				SecondaryID: secondary,
			})
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), pref)
		},
	}
	set.Flags().StringVar(&secondary, "secondary", "", "secondary identifier")
	cmd.AddCommand(set)
	return cmd
}
