package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/kimaniTilus/OFT-SYSTEM/internal/entity"
	"github.com/kimaniTilus/OFT-SYSTEM/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

type AuditWorker struct {
	rabbitMQURL string
	queueName   string
	auditRepo   repository.ITaskAuditRepository
}

func NewAuditWorker(rabbitMQURL, queueName string, auditRepo repository.ITaskAuditRepository) *AuditWorker {
	return &AuditWorker{
		rabbitMQURL: rabbitMQURL,
		queueName:   queueName,
		auditRepo:   auditRepo,
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	// Создаем отдельное соединение и канал для consumer'а
	conn, err := amqp.Dial(w.rabbitMQURL)
	if err != nil {
		log.Printf("❌ Ошибка подключения к RabbitMQ для воркера: %v", err)
		return
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		log.Printf("❌ Ошибка создания канала для воркера: %v", err)
		return
	}
	defer channel.Close()

	// Убеждаемся, что очередь существует
	_, err = channel.QueueDeclare(
		w.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		log.Printf("❌ Ошибка объявления очереди: %v", err)
		return
	}

	// Создаем consumer для очереди
	msgs, err := channel.Consume(
		w.queueName,    // queue
		"audit_worker", // consumer tag (уникальный идентификатор)
		false,          // auto-ack
		false,          // exclusive
		false,          // no-local
		false,          // no-wait
		nil,            // args
	)
	if err != nil {
		log.Printf("❌ Ошибка создания consumer: %v", err)
		return
	}

	fmt.Println("✅ Audit Worker запущен. Ожидаем сообщения...")

	// Обрабатываем сообщения
	for {
		select {
		case <-ctx.Done():
			fmt.Println("🛑 Audit Worker остановлен")
			return
		case msg, ok := <-msgs:
			if !ok {
				fmt.Println("📨 Канал сообщений закрыт")
				return
			}
			w.processMessage(msg)
		}
	}
}

func (w *AuditWorker) processMessage(msg amqp.Delivery) {
	ctx := context.Background()

	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		log.Printf("❌ Ошибка парсинга сообщения: %v", err)
		msg.Nack(false, false) // Не возвращаем в очередь
		return
	}

	// 2. Конвертируем в TaskAudit
	taskAudit, err := convertToTaskAudit(&auditMsg)
	if err != nil {
		log.Printf("❌ Ошибка конвертации: %v", err)
		msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	// 3. Сохраняем в БД
	if err := w.auditRepo.Create(ctx, taskAudit); err != nil {
		log.Printf("❌ Ошибка сохранения аудита: %v", err)
		msg.Nack(false, true) // Возвращаем в очередь для повторной обработки
		return
	}

	// 4. Подтверждаем обработку
	msg.Ack(false)
	log.Printf("✅ Аудит сохранен: %s задача ID=%d", taskAudit.Action, taskAudit.EntityID)
}

func convertToTaskAudit(msg *entity.AuditMessage) (*entity.TaskAudit, error) {
	// Конвертируем map[string]any в JSON строки
	var oldValuesJSON, newValuesJSON, changesJSON *string

	if msg.OldValues != nil {
		oldJSON, err := json.Marshal(msg.OldValues)
		if err != nil {
			return nil, err
		}
		oldStr := string(oldJSON)
		oldValuesJSON = &oldStr
	}

	if msg.NewValues != nil {
		newJSON, err := json.Marshal(msg.NewValues)
		if err != nil {
			return nil, err
		}
		newStr := string(newJSON)
		newValuesJSON = &newStr
	}

	if msg.Changes != nil {
		changesBytes, err := json.Marshal(msg.Changes)
		if err != nil {
			return nil, err
		}
		changesStr := string(changesBytes)
		changesJSON = &changesStr
	}

	return &entity.TaskAudit{
		UserID:     msg.UserID,
		Action:     msg.Action,
		EntityType: "task",
		EntityID:   msg.EntityID,
		OldValues:  oldValuesJSON,
		NewValues:  newValuesJSON,
		Changes:    changesJSON,
		ChangedAt:  msg.Timestamp,
	}, nil
}
