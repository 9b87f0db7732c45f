package publish

func LiveTopic(prefix string) string   { return prefix + "/live" }
func KPIsTopic(prefix string) string   { return prefix + "/kpis" }
func AlertsTopic(prefix string) string { return prefix + "/alerts" }

// StatusTopic carries "online" while connected and the "offline" will.
func StatusTopic(prefix string) string { return prefix + "/status" }
