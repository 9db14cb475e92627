package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jose-valero/tabletop-rooms-bot/internal/domain"
)

var roomsGame string

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Salas registradas de un grupo",
}

var roomsListCmd = &cobra.Command{
	Use:   "list <group>",
	Short: "Poda las vencidas y lista las salas del grupo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		// filtrar necesita el catálogo, que puede necesitar el navegador
		if roomsGame != "" {
			if err := a.startBrowser(ctx); err != nil {
				return err
			}
		}
		rooms, err := a.rooms.Query(ctx, args[0], roomsGame)
		if err != nil {
			return err
		}
		printRooms(cmd, rooms, roomsGame == "")
		return nil
	},
}

var roomsCloseCmd = &cobra.Command{
	Use:   "close <group> <index>",
	Short: "Cierra la sala en esa posición (sin podar antes)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("índice inválido %q", args[1])
		}
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.rooms.CloseByIndex(ctx, args[0], index)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cerrada %s/%s\n", rec.GameID, rec.RoomID)
		return nil
	},
}

var roomsClearCmd = &cobra.Command{
	Use:   "clear <group>",
	Short: "Borra todas las salas del grupo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.rooms.Clear(ctx, args[0])
	},
}

func printRooms(cmd *cobra.Command, rooms []domain.RoomRecord, indexed bool) {
	out := cmd.OutOrStdout()
	if len(rooms) == 0 {
		fmt.Fprintln(out, "no hay salas")
		return
	}
	now := time.Now()
	for i, r := range rooms {
		prefix := "-"
		if indexed {
			prefix = strconv.Itoa(i)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", prefix, r.GameName, r.URL(cfg.BaseURL),
			r.ExpiresAt.Sub(now).Round(time.Second), r.RuleLink)
	}
}

func init() {
	roomsListCmd.Flags().StringVar(&roomsGame, "game", "", "filtrar por nombre o id de juego")
	roomsCmd.AddCommand(roomsListCmd, roomsCloseCmd, roomsClearCmd)
}
