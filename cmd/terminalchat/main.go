// Command terminalchat runs the conversation engine against in-memory
// stores, so the bot can be exercised from a terminal without Postgres,
// Redis or a messaging gateway. State is discarded on exit.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"famtreebot/internal/chatbot"
	"famtreebot/internal/repository/memory"
	"famtreebot/internal/service"
	"famtreebot/internal/session"
	"famtreebot/pkg/logger"
)

func main() {
	l := logger.New("warn")

	store := memory.NewStore()
	familySvc := service.NewFamilyService(store.Users(), store.Trees(), store.Members(), store.Events(), l)
	accessSvc := service.NewAccessService(store.Trees(), l)
	lockMgr := service.NewLockManager(store.Members(), l)
	engine := chatbot.NewEngine(familySvc, accessSvc, lockMgr, session.NewMemoryStore(), l)

	fmt.Println("==================================================")
	fmt.Println(" FAMILY TREE TERMINAL CHAT")
	fmt.Println("==================================================")
	fmt.Println("Type 'exit' or 'quit' to stop.")
	fmt.Print("\nEnter your simulated phone number (e.g. +1234567890): ")

	scanner := bufio.NewScanner(os.Stdin)
	phone := "+1234567890"
	if scanner.Scan() {
		if input := strings.TrimSpace(scanner.Text()); input != "" {
			phone = input
		}
	}

	fmt.Printf("\nSimulating user: %s\nYou can now chat with the bot!\n\n", phone)

	ctx := context.Background()
	for {
		fmt.Printf("You (%s): ", phone)
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := engine.HandleMessage(ctx, phone, input)
		if err != nil {
			fmt.Printf("\n[Error]: %v\n\n", err)
			continue
		}
		fmt.Printf("\nBot: %s\n\n", reply)
	}

	fmt.Println("\nGoodbye!")
}
