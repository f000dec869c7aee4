package sami

import "log"

func logMsg(who string, msg string) {
	log.Printf("[%s]:%s\n", who, msg)
}

func logError(who string, err error, msg string) {
	log.Printf("[%s]:Error:%s:%v\n", who, msg, err)
}

func logDroppedRequest(who string, fromAddress string, reason string) {
	log.Printf("[%s]:Dropped request from %s: %s\n", who, fromAddress, reason)
}
