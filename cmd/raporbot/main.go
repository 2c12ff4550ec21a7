// main.go - interactive terminal client
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"raporbot/internal"
)

func main() {
	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer app.DBManager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := app.NewSession()

	fmt.Printf("%s raporlama asistanina hos geldiniz. Cikmak icin 'cikis' yazin.\n\n", app.Brand.Name)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		reply, done := session.Process(ctx, scanner.Text())
		fmt.Println(reply)
		fmt.Println()
		if done {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		log.Printf("Input error: %v", err)
	}
}
