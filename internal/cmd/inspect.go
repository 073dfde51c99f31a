package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clipfleet/clipfleet/internal/config"
	"github.com/clipfleet/clipfleet/internal/geelark"
	log "github.com/sirupsen/logrus"
)

// DoListPhones prints the cloud-phone inventory, one device per line.
func DoListPhones(cfg *config.Config) {
	client := geelark.NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	page := 1
	total := 0
	for {
		result, err := client.ListPhones(ctx, geelark.PhoneListParams{Page: page})
		if err != nil {
			log.Errorf("failed to list cloud phones: %v", err)
			return
		}
		for _, phone := range result.Items {
			country := ""
			if phone.Equipment != nil {
				country = phone.Equipment.CountryName
			}
			fmt.Printf("%-24s %-20s %-10s %s\n", phone.ID, phone.SerialName, geelark.PhoneStatusName(phone.Status), country)
		}
		total += len(result.Items)
		if total >= result.Total || len(result.Items) == 0 {
			break
		}
		page++
	}
	fmt.Printf("%d cloud phones\n", total)
}

// DoQueryTasks prints the current state of the given task ids.
func DoQueryTasks(cfg *config.Config, idList string) {
	ids := splitIDs(idList)
	if len(ids) == 0 {
		log.Error("no task ids given")
		return
	}

	client := geelark.NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tasks, err := client.QueryTasks(ctx, ids)
	if err != nil {
		log.Errorf("failed to query tasks: %v", err)
		return
	}

	for _, task := range tasks {
		line := fmt.Sprintf("%-24s %-18s %-12s", task.ID, geelark.TaskTypeName(task.TaskType), geelark.TaskStatusName(task.Status))
		if task.Status == geelark.TaskStatusFailed && task.FailDesc != "" {
			line += fmt.Sprintf(" (%d: %s)", task.FailCode, task.FailDesc)
		}
		fmt.Println(line)
	}
}

func splitIDs(idList string) []string {
	var ids []string
	for _, id := range strings.Split(idList, ",") {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
