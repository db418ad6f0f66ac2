package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/sta4888/TZL/internal/cli"
	"github.com/sta4888/TZL/internal/model"
)

var (
	host      = flag.String("host", envDefault("SHOP_HOST", "127.0.0.1"), "Server host")
	port      = flag.Int("port", envIntDefault("SHOP_PORT", 5000), "Server port")
	cachePath = flag.String("cache", envDefault("SHOP_ITEMS_CACHE", "items_cache.json"), "Items cache file")
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func main() {
	flag.Parse()

	client, err := cli.Connect(*host, *port)
	if err != nil {
		color.Red("Failed to connect to %s:%d: %v", *host, *port, err)
		os.Exit(1)
	}
	defer client.Close()

	cache := &cli.ItemCache{Path: *cachePath}
	stdin := bufio.NewScanner(os.Stdin)

	fmt.Print("Nickname: ")
	if !stdin.Scan() {
		return
	}
	nickname := strings.TrimSpace(stdin.Text())

	login, err := client.Login(nickname)
	if err != nil {
		color.Red("Login failed: %v", err)
		os.Exit(1)
	}

	shop := login.ItemsMaster
	if err = cache.Save(shop); err != nil {
		color.Yellow("Could not cache item list: %v", err)
	}

	color.Green("Welcome, %s! Login bonus: %d, credits: %d",
		login.Account.Nickname, login.LoginBonus, login.Account.Credits)

	printHelp()
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}

		fields := strings.Fields(stdin.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "balance":
			res, err := client.WhoAmI()
			if err != nil {
				printErr(err)
				continue
			}
			color.Cyan("Credits: %d", res.Account.Credits)

		case "inventory":
			res, err := client.WhoAmI()
			if err != nil {
				printErr(err)
				continue
			}
			printInventory(res.Account.Items, shop)

		case "shop":
			printItems(shop)

		case "buy":
			id, ok := parseID(fields)
			if !ok {
				continue
			}
			res, err := client.Buy(id)
			if err != nil {
				printErr(err)
				continue
			}
			color.Green("Bought %s for %d, credits left: %d",
				res.Bought.Name, res.Bought.Price, res.Account.Credits)

		case "sell":
			id, ok := parseID(fields)
			if !ok {
				continue
			}
			res, err := client.Sell(id)
			if err != nil {
				printErr(err)
				continue
			}
			color.Green("Sold %s for %d, credits now: %d",
				res.Sold.Name, res.Received, res.Account.Credits)

		case "logout", "exit":
			if err := client.Logout(); err != nil {
				printErr(err)
			}
			color.Cyan("Bye!")
			return

		case "help":
			printHelp()

		default:
			color.Yellow("Unknown command: %s", fields[0])
		}
	}
}

func parseID(fields []string) (int, bool) {
	if len(fields) < 2 {
		color.Yellow("Usage: %s <item id>", fields[0])
		return 0, false
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		color.Yellow("Bad item id: %s", fields[1])
		return 0, false
	}
	return id, true
}

func printHelp() {
	fmt.Println("Commands: balance | inventory | shop | buy <id> | sell <id> | logout | exit")
}

func printItems(items []model.Item) {
	for _, it := range items {
		fmt.Printf("  id:%d  %-12s price:%d\n", it.ID, it.Name, it.Price)
	}
}

func printInventory(owned []int, shop []model.Item) {
	if len(owned) == 0 {
		fmt.Println("  (empty)")
		return
	}
	byID := make(map[int]model.Item, len(shop))
	for _, it := range shop {
		byID[it.ID] = it
	}
	for _, id := range owned {
		if it, ok := byID[id]; ok {
			fmt.Printf("  id:%d  %s\n", it.ID, it.Name)
		} else {
			// the admin may have removed the item from the catalog
			fmt.Printf("  id:%d  (unknown item)\n", id)
		}
	}
}

func printErr(err error) {
	var we *cli.WireError
	if errors.As(err, &we) {
		color.Red("Server error: %s", we.Code)
		return
	}
	color.Red("Error: %v", err)
}
