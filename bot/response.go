package bot

import (
	"github.com/bwmarrin/discordgo"
)

// channelReplier answers a text command in the channel it came from.
type channelReplier struct {
	session   *discordgo.Session
	channelID string
}

func (r *channelReplier) Reply(content string) error {
	_, err := r.session.ChannelMessageSend(r.channelID, content)
	return err
}

// interactionReplier answers a slash command. The first message is the
// interaction response, later ones are sent as followups.
type interactionReplier struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction
	responded   bool
}

func (r *interactionReplier) Reply(content string) error {
	if !r.responded {
		err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
			},
		})
		if err != nil {
			return err
		}
		r.responded = true
		return nil
	}

	_, err := r.session.FollowupMessageCreate(r.interaction, true, &discordgo.WebhookParams{
		Content: content,
	})
	return err
}
