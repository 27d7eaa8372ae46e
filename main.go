package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"soniccipher/cryptography"
	"soniccipher/stegano/audio"
	"soniccipher/util"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		help()
		return
	}

	switch os.Args[1] {
	case "capacity":
		if len(os.Args) < 3 {
			fatal("Usage: soniccipher capacity <carrier.wav>")
		}
		capacity, err := audio.Capacity(os.Args[2])
		if err != nil {
			fatal("Failed to compute capacity:", err)
		}
		fmt.Printf("%d bytes of payload fit into %s\n", capacity, os.Args[2])
	case "hide":
		hide(os.Args[2:])
	case "reveal":
		reveal(os.Args[2:])
	default:
		help()
	}
}

func hide(args []string) {
	compress := false
	rest := []string{}
	for _, arg := range args {
		if arg == "-z" {
			compress = true
		} else {
			rest = append(rest, arg)
		}
	}
	if len(rest) < 2 {
		fatal("Usage: soniccipher hide [-z] <carrier.wav> <output.wav> [message]")
	}
	inPath, outPath := rest[0], rest[1]

	var message string
	if len(rest) > 2 {
		message = strings.Join(rest[2:], " ")
	} else {
		// no message argument, take it from stdin
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fatal("Failed to read message from stdin:", err)
		}
		message = string(data)
	}

	password, err := util.GetPasswdConfirm("Password: ", "Confirm password: ")
	if err != nil {
		fatal("Failed to read password:", err)
	}

	encrypted, err := cryptography.EncryptMessage(message, string(password), compress)
	if err != nil {
		fatal("Failed to encrypt message:", err)
	}

	capacity, err := audio.Capacity(inPath)
	if err != nil {
		fatal("Failed to inspect carrier:", err)
	}
	if len(encrypted) > capacity {
		fatal("Encrypted payload is too large for this audio. Capacity:",
			capacity, "bytes, payload:", len(encrypted), "bytes.")
	}

	if err = audio.HideData(inPath, outPath, encrypted, string(password)); err != nil {
		fatal("Failed to hide message:", err)
	}
	fmt.Println("Message hidden in", outPath)
}

func reveal(args []string) {
	if len(args) < 1 {
		fatal("Usage: soniccipher reveal <stego.wav>")
	}

	password, err := util.GetPasswd("Password: ")
	if err != nil {
		fatal("Failed to read password:", err)
	}

	payload, err := audio.ExtractData(args[0], string(password))
	if err != nil {
		fatal("Failed to extract message:", err)
	}
	message, err := cryptography.DecryptMessage(payload, string(password))
	if err != nil {
		fatal("Failed to decrypt message:", err)
	}
	fmt.Println(message)
}

func fatal(args ...any) {
	fmt.Println(args...)
	os.Exit(-1)
}

func help() {
	line := `Usage: ./soniccipher <command> [arguments]

The following commands are supported:
	capacity <carrier.wav>				show how many payload bytes fit
	hide [-z] <carrier.wav> <out.wav> [message]	hide a message (stdin if omitted)
	reveal <stego.wav>				recover a hidden message
`

	fmt.Printf("%s", line)
}
