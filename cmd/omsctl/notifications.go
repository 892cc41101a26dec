// Push notification commands.
package main

import (
	"github.com/spf13/cobra"
)

func (a *app) notificationsCmd() *cobra.Command {
	var appID string
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Manage push notification topics and device tokens",
	}
	cmd.PersistentFlags().StringVar(&appID, "app", "", "notification application id")

	cmd.AddCommand(&cobra.Command{
		Use:   "enums <enumTypeId>",
		Short: "List notification topics of an enum type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enums, err := a.bridge.GetNotificationEnumIDs(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), enums)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "prefs <userId>",
		Short: "List the topics a user is subscribed to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.bridge.GetNotificationUserPrefTypeIDs(cmd.Context(), appID, args[0], nil)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), prefs)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "register <registrationToken> <deviceId>",
		Short: "Store a device's push registration token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bridge.StoreClientRegistrationToken(cmd.Context(), args[0], args[1], appID); err != nil {
				return err
			}
			return a.done(cmd.OutOrStdout(), "notifications register")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unregister <deviceId>",
		Short: "Remove a device's push registration token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bridge.RemoveClientRegistrationToken(cmd.Context(), args[0], appID); err != nil {
				return err
			}
			return a.done(cmd.OutOrStdout(), "notifications unregister")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "subscribe <topicName>",
		Short: "Subscribe to a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bridge.SubscribeTopic(cmd.Context(), args[0], appID); err != nil {
				return err
			}
			return a.done(cmd.OutOrStdout(), "notifications subscribe")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unsubscribe <topicName>",
		Short: "Unsubscribe from a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.bridge.UnsubscribeTopic(cmd.Context(), args[0], appID); err != nil {
				return err
			}
			return a.done(cmd.OutOrStdout(), "notifications unsubscribe")
		},
	})
	return cmd
}
