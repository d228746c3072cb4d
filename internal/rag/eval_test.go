package rag

import (
	"context"
	"testing"
)

type retrievalEvalCase struct {
	Name       string
	Query      string
	WantSource string
}

// The eval corpus is a miniature knowledge base with clearly separated
// topics, so Recall@1 failures indicate ranking regressions rather than
// genuinely ambiguous queries.
var evalDocs = map[string]string{
	"install.md": "# Установка\n" +
		"Скачайте дистрибутив и запустите установщик. Программа требует не менее " +
		"двух гигабайт свободного места на диске. После установки перезагрузите компьютер.",
	"network.md": "# Сеть\n" +
		"Для подключения к серверу укажите адрес и порт в настройках сети. " +
		"Брандмауэр должен разрешать исходящие соединения по выбранному порту.",
	"backup.md": "# Резервное копирование\n" +
		"Резервные копии создаются автоматически каждую ночь. " +
		"Восстановление выполняется командой restore с указанием даты копии.",
	"license.md": "# Лицензия\n" +
		"Лицензионный ключ привязан к рабочему месту. Перенос лицензии на другой " +
		"компьютер выполняется через личный кабинет.",
}

func TestRetrievalEvalHarness(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for name, content := range evalDocs {
		if _, err := svc.IndexText(ctx, name, content); err != nil {
			t.Fatalf("index %s: %v", name, err)
		}
	}

	cases := []retrievalEvalCase{
		{"install_space", "сколько места на диске нужно для установки", "install.md"},
		{"install_reboot", "нужно ли перезагрузить компьютер после установки", "install.md"},
		{"network_port", "какой порт указать в настройках сети", "network.md"},
		{"network_firewall", "брандмауэр блокирует соединения", "network.md"},
		{"backup_restore", "восстановление копии командой restore", "backup.md"},
		{"backup_schedule", "когда создаются резервные копии", "backup.md"},
		{"license_transfer", "перенос лицензии на другой компьютер", "license.md"},
	}

	hits := 0
	for _, tc := range cases {
		answer, err := svc.Ask(ctx, tc.Query)
		if err != nil {
			t.Fatalf("%s: Ask: %v", tc.Name, err)
		}
		if !answer.Found || len(answer.Sources) == 0 {
			t.Errorf("%s: no answer for %q", tc.Name, tc.Query)
			continue
		}
		got := answer.Sources[0].Chunk.Source
		if got == tc.WantSource {
			hits++
		} else {
			t.Errorf("%s: top source = %s, want %s", tc.Name, got, tc.WantSource)
		}
	}
	t.Logf("retrieval Recall@1: %.2f (%d/%d)", float64(hits)/float64(len(cases)), hits, len(cases))
}
