// Package main provides the command line client of the duration server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/ytlength/internal/api/connect"
	"github.com/osa030/ytlength/internal/app/aggregate"
	"github.com/osa030/ytlength/internal/app/report"
)

var (
	app     = kingpin.New("ytlengthcli", "YouTube playlist duration client")
	server  = app.Flag("server", "Server address").Default("http://localhost:3000").Envar("YTLENGTH_SERVER").String()
	timeout = app.Flag("timeout", "Request timeout").Default("60s").Duration()

	// duration command
	durationCmd        = app.Command("duration", "Print the total duration of a playlist")
	durationPlaylistID = durationCmd.Arg("playlist-id", "YouTube playlist ID").Required().String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewPlaylistClient(http.DefaultClient, *server)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch command {
	case durationCmd.FullCommand():
		showDuration(ctx, client, *durationPlaylistID)
	}
}

func showDuration(ctx context.Context, client *apiconnect.PlaylistClient, playlistID string) {
	rep, err := client.GetReport(ctx, playlistID)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printReport(rep)
}

func printReport(rep *report.Report) {
	for _, info := range rep.PlaylistInfo {
		fmt.Printf("Playlist: %s (%s)\n", info.Title(), info.ID)
	}
	fmt.Printf("Videos:   %d\n", rep.ItemCount)
	fmt.Printf("Total:    %s\n", rep.TotalDuration)
	fmt.Printf("Average:  %s\n", rep.AverageDuration)
	fmt.Println("Playback speeds:")
	for _, m := range aggregate.PlaybackSpeeds {
		key := aggregate.SpeedDuration{Multiplier: m}.Key()
		if d, ok := rep.PlaybackSpeeds[key]; ok {
			fmt.Printf("  %5sx  %s\n", key, d)
		}
	}
}
