// Command passhash prints the bcrypt hash of a staff passcode for use in
// STAFF_PASSCODE_HASH or ADMIN_PASSCODE_HASH.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/theater-seating/internal/utils"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	flag.Parse()

	passcode := strings.Join(flag.Args(), " ")
	if passcode == "" {
		fmt.Fprint(os.Stderr, "passcode: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "read passcode:", err)
			os.Exit(1)
		}
		passcode = strings.TrimRight(line, "\r\n")
	}
	if passcode == "" {
		fmt.Fprintln(os.Stderr, "empty passcode")
		os.Exit(2)
	}
	if *cost < bcrypt.MinCost || *cost > bcrypt.MaxCost {
		fmt.Fprintf(os.Stderr, "cost must be between %d and %d\n", bcrypt.MinCost, bcrypt.MaxCost)
		os.Exit(2)
	}

	hash, err := utils.HashPasscode(passcode, *cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
