// Package discord posts evaluation alerts to a Discord channel.
package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"formquali-workers/internal/models"

	"github.com/bwmarrin/discordgo"
)

const (
	colorCritical = 0xE74C3C
	colorLowScore = 0xF39C12
	colorOK       = 0x2ECC71

	lowScoreThreshold = 70
)

// MessageSender is the part of *discordgo.Session used here.
type MessageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Client struct {
	session   MessageSender
	channelID string
	now       func() time.Time
}

func NewClient(botToken, channelID string) (*Client, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return NewClientWith(session, channelID), nil
}

func NewClientWith(session MessageSender, channelID string) *Client {
	return &Client{session: session, channelID: channelID, now: time.Now}
}

// PostResult sends the evaluation result as an embed and returns the
// message id.
func (c *Client) PostResult(ctx context.Context, result models.EvaluationResult) (string, error) {
	msg, err := c.session.ChannelMessageSendEmbed(c.channelID, c.buildEmbed(result), discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send discord message: %w", err)
	}
	return msg.ID, nil
}

func (c *Client) buildEmbed(r models.EvaluationResult) *discordgo.MessageEmbed {
	color := colorOK
	title := fmt.Sprintf("Monitoria ticket #%s", r.TicketNumber)
	switch {
	case r.FalhaCritica:
		color = colorCritical
		title = fmt.Sprintf("Falha crítica (NCG) no ticket #%s", r.TicketNumber)
	case r.NotaFinal < lowScoreThreshold:
		color = colorLowScore
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Analista", Value: orDash(r.Analista), Inline: true},
		{Name: "Monitor", Value: orDash(r.Monitor), Inline: true},
		{Name: "Casa", Value: orDash(r.Casa), Inline: true},
		{Name: "Nota Final (%)", Value: fmt.Sprintf("%.2f", r.NotaFinal), Inline: true},
		{Name: "Data do Atendimento", Value: orDash(r.DataAtendimento), Inline: true},
	}
	if len(r.FailedNcg) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "NCG",
			Value: strings.Join(r.FailedNcg, "\n"),
		})
	}

	return &discordgo.MessageEmbed{
		Title:     title,
		URL:       r.TicketLink,
		Color:     color,
		Fields:    fields,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: "FormQuali - monitoria " + r.RecordID},
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
