package discordutils

import (
	"github.com/bwmarrin/discordgo"
)

// MemberHasAdminPermissions returns true if the given member has admin permissions.
func MemberHasAdminPermissions(guild *discordgo.Guild, member *discordgo.Member) bool {
	if isGuildOwner(guild, member) {
		return true
	}

	for _, role := range memberRoles(guild, member) {
		if RoleAllowsAdminPermissions(role) {
			return true
		}
	}

	return false
}

// MemberCanManageMessages returns true if the given member may manage messages.
func MemberCanManageMessages(guild *discordgo.Guild, member *discordgo.Member) bool {
	if isGuildOwner(guild, member) {
		return true
	}

	for _, role := range memberRoles(guild, member) {
		if RoleAllowsAdminPermissions(role) ||
			role.Permissions&discordgo.PermissionManageMessages > 0 {
			return true
		}
	}

	return false
}

// RoleAllowsAdminPermissions returns true if the given role allows admin permissions.
func RoleAllowsAdminPermissions(role *discordgo.Role) bool {
	return role.Permissions&discordgo.PermissionAdministrator > 0
}

func isGuildOwner(guild *discordgo.Guild, member *discordgo.Member) bool {
	return member.User != nil && member.User.ID == guild.OwnerID
}

func memberRoles(
	guild *discordgo.Guild,
	member *discordgo.Member,
) (roles []*discordgo.Role) {
	guildRoles := make(map[string]*discordgo.Role)
	for _, role := range guild.Roles {
		guildRoles[role.ID] = role
	}

	for _, roleID := range member.Roles {
		if role, ok := guildRoles[roleID]; ok {
			roles = append(roles, role)
		}
	}
	return
}

// AckInteraction sends a deferred response for the given interaction.
func AckInteraction(
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// SendFollowup creates a followup message with the given content.
func SendFollowup(
	content string,
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.FollowupMessageCreate(
		session.State.User.ID,
		interaction,
		true,
		&discordgo.WebhookParams{
			Content: content,
		},
	)
}

// SendFollowupEmbed creates a followup message carrying the given embed.
func SendFollowupEmbed(
	embed *discordgo.MessageEmbed,
	interaction *discordgo.Interaction,
	session *discordgo.Session,
) {
	session.FollowupMessageCreate(
		session.State.User.ID,
		interaction,
		true,
		&discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	)
}

// MemberHasRole returns true if the given member has the given role.
func MemberHasRole(member *discordgo.Member, roleID string) bool {
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// RoleMembers filters the guild's members to those holding the given role.
func RoleMembers(
	guild *discordgo.Guild,
	roleID string,
) (members []*discordgo.Member) {
	for _, member := range guild.Members {
		if MemberHasRole(member, roleID) {
			members = append(members, member)
		}
	}
	return
}

// GuildRoleNames maps the guild's role IDs to their current names.
func GuildRoleNames(guild *discordgo.Guild) map[string]string {
	names := make(map[string]string, len(guild.Roles))
	for _, role := range guild.Roles {
		names[role.ID] = role.Name
	}
	return names
}
