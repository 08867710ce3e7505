package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "channels":
		channelsCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Seeder - fills a development server with channels and activity

USAGE:
  seeder <command> [options]

COMMANDS:
  channels  Register users, publish videos, then watch, like, comment and subscribe
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Five channels with three videos each
  seeder channels

  # Larger data set
  seeder channels --users=20 --videos=5`)
}

type seededUser struct {
	user  *User
	token string
}

func channelsCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("channels", flag.ExitOnError)
	users := fs.Int("users", 5, "Number of channels to create")
	videos := fs.Int("videos", 3, "Videos published per channel")
	password := fs.String("password", "seedpassword123", "Password for every seeded account")
	fs.Parse(args)

	if *users < 2 {
		fmt.Println("Error: --users must be at least 2")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := time.Now().UnixNano() % 100000

	fmt.Println("=== Seeder: channels ===")
	fmt.Println()

	var seeded []seededUser
	var published []*Video
	for i := 0; i < *users; i++ {
		username := fmt.Sprintf("channel%d_%d", i+1, suffix)
		user, token, err := client.RegisterUser(username, *password)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, *users, err)
			os.Exit(1)
		}
		seeded = append(seeded, seededUser{user: user, token: token})

		for j := 0; j < *videos; j++ {
			title := fmt.Sprintf("%s episode %d", username, j+1)
			video, err := client.PublishVideo(token, title, float64(30+rng.Intn(600)))
			if err != nil {
				fmt.Printf("  [%d/%d] FAILED to publish: %v\n", i+1, *users, err)
				os.Exit(1)
			}
			published = append(published, video)
		}
		fmt.Printf("  [%d/%d] %s published %d videos\n", i+1, *users, username, *videos)
	}

	fmt.Println()
	fmt.Print("Generating activity... ")
	for i, u := range seeded {
		// every user follows the next channel
		next := seeded[(i+1)%len(seeded)]
		if err := client.Subscribe(u.token, next.user.ID); err != nil {
			fmt.Printf("\n  Warning: subscribe failed for %s: %v\n", u.user.Username, err)
		}
		if err := client.Tweet(u.token, "Hello from "+u.user.Username); err != nil {
			fmt.Printf("\n  Warning: tweet failed for %s: %v\n", u.user.Username, err)
		}

		for _, v := range published {
			if rng.Intn(2) == 0 {
				continue
			}
			if err := client.WatchVideo(u.token, v.ID); err != nil {
				fmt.Printf("\n  Warning: watch failed: %v\n", err)
				continue
			}
			if rng.Intn(3) == 0 {
				if err := client.LikeVideo(u.token, v.ID); err != nil {
					fmt.Printf("\n  Warning: like failed: %v\n", err)
				}
			}
			if rng.Intn(4) == 0 {
				if err := client.Comment(u.token, v.ID, "Nice one, "+v.Title); err != nil {
					fmt.Printf("\n  Warning: comment failed: %v\n", err)
				}
			}
		}
	}
	fmt.Println("OK")

	fmt.Println()
	fmt.Println("=========================================")
	fmt.Println("  SEED COMPLETE")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Printf("  Password for all accounts: %s\n", *password)
	for _, u := range seeded {
		fmt.Printf("  %s/api/v1/users/c/%s\n", apiURL, u.user.Username)
	}
	fmt.Println()
}
